package api

import "net/http"

// API paths relative to the base URL.
const (
	basePath     = "/api/v1/"
	countersPath = basePath + "counters"
	counterPath  = basePath + "counter/"
	increasePath = counterPath + "inc"
	decreasePath = counterPath + "dec"
)

// Body keys.
const (
	idKey    = "id"
	titleKey = "title"
)

// Route names, used for logging and error messages.
const (
	RouteGetCounters     = "get_counters"
	RouteCreateCounter   = "create_counter"
	RouteIncreaseCounter = "increase_counter"
	RouteDecreaseCounter = "decrease_counter"
	RouteDeleteCounter   = "delete_counter"
)

// Route describes a single REST call. Every route answers with the full counter list.
type Route struct {
	Name   string
	Method string
	Path   string
	Body   map[string]string // nil for requests without a body
}

// GetCounters lists every counter.
func GetCounters() Route {
	return Route{Name: RouteGetCounters, Method: http.MethodGet, Path: countersPath}
}

// CreateCounter creates a counter with the given title.
func CreateCounter(title string) Route {
	return Route{
		Name:   RouteCreateCounter,
		Method: http.MethodPost,
		Path:   counterPath,
		Body:   map[string]string{titleKey: title},
	}
}

// IncreaseCounter increments the counter with the given id.
func IncreaseCounter(id string) Route {
	return Route{
		Name:   RouteIncreaseCounter,
		Method: http.MethodPost,
		Path:   increasePath,
		Body:   map[string]string{idKey: id},
	}
}

// DecreaseCounter decrements the counter with the given id.
func DecreaseCounter(id string) Route {
	return Route{
		Name:   RouteDecreaseCounter,
		Method: http.MethodPost,
		Path:   decreasePath,
		Body:   map[string]string{idKey: id},
	}
}

// DeleteCounter deletes the counter with the given id.
func DeleteCounter(id string) Route {
	return Route{
		Name:   RouteDeleteCounter,
		Method: http.MethodDelete,
		Path:   counterPath,
		Body:   map[string]string{idKey: id},
	}
}
