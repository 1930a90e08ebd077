package entities

// FlowInfo is the catalog record for one call flow. Flows are created
// implicitly on first access; the catalog exists so cross-flow search and
// DNIS lookup have names to report.
type FlowInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	DNIS        []string `json:"dnis"`
}
