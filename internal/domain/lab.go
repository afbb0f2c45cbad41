package domain

type Lab struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Instrument struct {
	ID      int64  `json:"instrument_id"`
	Name    string `json:"instrument_name"`
	LabID   int64  `json:"lab_id"`
	LabName string `json:"lab_name,omitempty"`
	Working bool   `json:"working"`
}
