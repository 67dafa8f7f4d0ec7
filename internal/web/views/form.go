package views

// RecordView is the creation form
type RecordView struct {
	Title string `json:"title"`
	// Token is the one-time submission token
	Token   string `json:"token"`
	TLDR    string `json:"tldr,omitempty"`
	Summary string `json:"summary,omitempty"`
	Accept  string `json:"accept"`
	MaxSize int64  `json:"max_size"`
	Alert   string `json:"alert,omitempty"`
}

// NewRecordForm builds an empty form carrying token
func NewRecordForm(token, accept string, maxSize int64) *RecordView {
	if accept == "" {
		accept = "image/*"
	}
	return &RecordView{Title: "Add Whiteboard", Token: token, Accept: accept, MaxSize: maxSize}
}

// Failed re-renders the form with the entered text and a blocking alert
func (v *RecordView) Failed(token, tldr, summary, alert string) {
	v.Token = token
	v.TLDR = tldr
	v.Summary = summary
	v.Alert = alert
}
