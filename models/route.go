package models

// RouteResult is the optimizer's answer for a set of deliveries: the order in
// which to visit them plus the savings it claims over the naive route.
type RouteResult struct {
	StopOrder       []uint  `json:"stop_order"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	EstimatedMin    int     `json:"estimated_minutes"`
	DistanceSavedKm float64 `json:"distance_saved_km"`
	TimeSavedMin    int     `json:"time_saved_min"`
}
