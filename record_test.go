package main

import (
	"encoding/json"
	"testing"
)

func TestRecordIDUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected RecordID
		wantErr  bool
	}{
		{"string", `"abc-1"`, "abc-1", false},
		{"padded string", `" 42 "`, "42", false},
		{"number", `42`, "42", false},
		{"null", `null`, "", false},
		{"object", `{"id":1}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id RecordID
			err := json.Unmarshal([]byte(tt.input), &id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && id != tt.expected {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, id, tt.expected)
			}
		})
	}
}

func TestNoteDecodesNumericKeys(t *testing.T) {
	var w WasteTransferNote
	data := `{"id": 7, "job_id": 42, "client_name": "Acme", "operative_signature": "data:x", "created_by": null}`
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if w.ID != "7" || w.JobID != "42" {
		t.Errorf("ids = %q/%q, want 7/42", w.ID, w.JobID)
	}
	if w.OperativeSignatureURL != "data:x" {
		t.Errorf("OperativeSignatureURL = %q", w.OperativeSignatureURL)
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"empty", "", placeholder},
		{"whitespace", "  \t", placeholder},
		{"trimmed", "  Acme  ", "Acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := display(tt.value); got != tt.expected {
				t.Errorf("display(%q) = %q, want %q", tt.value, got, tt.expected)
			}
		})
	}
}

func TestOtherSentinels(t *testing.T) {
	tests := []struct {
		name     string
		note     WasteTransferNote
		got      func(*WasteTransferNote) string
		expected string
	}{
		{
			"SIC other",
			WasteTransferNote{SICCode: sicOtherSentinel, SICOther: "Animal Feed Processing"},
			(*WasteTransferNote).displaySIC,
			"Animal Feed Processing",
		},
		{
			"SIC other missing text",
			WasteTransferNote{SICCode: sicOtherSentinel},
			(*WasteTransferNote).displaySIC,
			placeholder,
		},
		{
			"SIC pick",
			WasteTransferNote{SICCode: "37000 - Sewerage", SICOther: "ignored"},
			(*WasteTransferNote).displaySIC,
			"37000 - Sewerage",
		},
		{
			"EWC other",
			WasteTransferNote{EWC: ewcOtherSentinel, EWCOther: "20 03 99"},
			(*WasteTransferNote).displayEWC,
			"20 03 99",
		},
		{
			"vehicle other",
			WasteTransferNote{VehicleRegistration: vehicleOtherSentinel, VehicleRegistrationOther: "AB12 CDE"},
			(*WasteTransferNote).displayVehicle,
			"AB12 CDE",
		},
		{
			"disposal other",
			WasteTransferNote{DisposalAddress: disposalOtherSentinel, DisposalAddressOther: "Tilbury STW"},
			(*WasteTransferNote).displayDisposalAddress,
			"Tilbury STW",
		},
		{
			"disposal pick",
			WasteTransferNote{DisposalAddress: "Basildon STW"},
			(*WasteTransferNote).displayDisposalAddress,
			"Basildon STW",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.got(&tt.note); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestResolvedDateOfService(t *testing.T) {
	tests := []struct {
		name     string
		note     string
		job      *Job
		expected string
	}{
		{"note date wins", "2026-07-14", &Job{DateOfService: "2026-07-01"}, "2026-07-14"},
		{"job date", "", &Job{DateOfService: "2026-07-01"}, "2026-07-01"},
		{"archived date", "", &Job{ArchivedDateOfService: "2026-06-30"}, "2026-06-30"},
		{"no job", "", nil, placeholder},
		{"nothing", " ", &Job{}, placeholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &WasteTransferNote{DateOfService: tt.note}
			if got := w.resolvedDateOfService(tt.job); got != tt.expected {
				t.Errorf("resolvedDateOfService() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTimeInOut(t *testing.T) {
	tests := []struct {
		name     string
		in, out  string
		expected string
	}{
		{"both", "08:00", "09:30", "08:00 – 09:30"},
		{"in only", "08:00", "", "08:00 – -"},
		{"out only", "", "09:30", "- – 09:30"},
		{"neither", "", "", placeholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &WasteTransferNote{TimeIn: tt.in, TimeOut: tt.out}
			if got := w.timeInOut(); got != tt.expected {
				t.Errorf("timeInOut() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSectionConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		section SectionConfig
		wantErr bool
	}{
		{"default job details", defaultSections[0], false},
		{"no title", SectionConfig{Left: []string{"ewc"}}, true},
		{"no fields", SectionConfig{Title: "Empty"}, true},
		{"unknown key", SectionConfig{Title: "X", Right: []string{"colour"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.section.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSectionItems(t *testing.T) {
	w := &WasteTransferNote{ClientName: "Acme", ClientEmail: ""}
	left, right := defaultSections[1].items(w, nil)

	if len(left) != 2 || len(right) != 3 {
		t.Fatalf("items() = %d/%d fields, want 2/3", len(left), len(right))
	}
	if left[0].label != "Client Name" || left[0].value != "Acme" {
		t.Errorf("left[0] = %+v", left[0])
	}
	for _, item := range right {
		if item.value != placeholder {
			t.Errorf("%s = %q, want placeholder", item.label, item.value)
		}
	}
}
