package domain

import "strconv"

// APIVersion numbers an incompatible generation of the HTTP API.
type APIVersion uint8

const APIv1 APIVersion = 1

// CurrentAPIVersion is the generation served by this build.
func CurrentAPIVersion() APIVersion {
	return APIv1
}

func (v APIVersion) String() string {
	return "v" + strconv.Itoa(int(v))
}

// RoutePrefix is the path the version's routes are mounted under.
func (v APIVersion) RoutePrefix() string {
	return "/" + v.String()
}
