package sheets

// ValueRange is returned by GET /v4/spreadsheets/{id}/values/{range}.
// Formatted cell values are always JSON strings, so rows decode directly
// into string slices.
// Reference: https://developers.google.com/sheets/api/reference/rest/v4/spreadsheets.values/get
type ValueRange struct {
	Range          string     `json:"range"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`
}

// apiErrorResponse is the standard Google API error envelope.
type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
