package laser

// Stats collects diagnostic counters while rendering. The counters are
// write-only from the renderer's point of view.
type Stats struct {
	Objects  int `json:"objects"`
	Subpaths int `json:"subpaths"`

	Points   int `json:"points"`
	PointsOn int `json:"points_on"`

	PointsLine   int `json:"points_line"`
	PointsTrip   int `json:"points_trip"`
	PointsBezier int `json:"points_bezier"`

	PointsDwellStart  int `json:"points_dwell_start"`
	PointsDwellCurve  int `json:"points_dwell_curve"`
	PointsDwellCorner int `json:"points_dwell_corner"`
	PointsDwellEnd    int `json:"points_dwell_end"`
	PointsDwellSwitch int `json:"points_dwell_switch"`

	RateDivs     int `json:"rate_divs"`
	FlatnessDivs int `json:"flatness_divs"`
}

// Add merges the counters of o into s.
func (s *Stats) Add(o Stats) {
	s.Objects += o.Objects
	s.Subpaths += o.Subpaths
	s.Points += o.Points
	s.PointsOn += o.PointsOn
	s.PointsLine += o.PointsLine
	s.PointsTrip += o.PointsTrip
	s.PointsBezier += o.PointsBezier
	s.PointsDwellStart += o.PointsDwellStart
	s.PointsDwellCurve += o.PointsDwellCurve
	s.PointsDwellCorner += o.PointsDwellCorner
	s.PointsDwellEnd += o.PointsDwellEnd
	s.PointsDwellSwitch += o.PointsDwellSwitch
	s.RateDivs += o.RateDivs
	s.FlatnessDivs += o.FlatnessDivs
}

// Reset clears every counter.
func (s *Stats) Reset() {
	*s = Stats{}
}

// Dwell returns the total number of dwell samples.
func (s Stats) Dwell() int {
	return s.PointsDwellStart + s.PointsDwellCurve + s.PointsDwellCorner +
		s.PointsDwellEnd + s.PointsDwellSwitch
}
