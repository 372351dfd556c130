package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

// placeholder is rendered wherever a value is missing.
const placeholder = "-"

// "Other" picks of the controlled vocabularies. When a stored pick equals one
// of these, the paired free-text field is shown instead.
const (
	sicOtherSentinel      = "00000 - Other: _______"
	ewcOtherSentinel      = "Other - ______________________________________"
	vehicleOtherSentinel  = "Other – ___________________________"
	disposalOtherSentinel = "Other - ______________________________________"
)

// RecordID is a record key that may be stored as a number or a string.
type RecordID string

// UnmarshalJSON accepts strings, numbers and null.
func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RecordID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("record id must be a string or number: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

func (id RecordID) String() string { return string(id) }

// WasteTransferNote is one row of the waste_transfer_notes table.
type WasteTransferNote struct {
	ID                   RecordID `json:"id"`
	JobID                RecordID `json:"job_id"`
	CustomerJobReference string   `json:"customer_job_reference"`
	DateOfService        string   `json:"date_of_service"`

	ClientName      string `json:"client_name"`
	ClientTelephone string `json:"client_telephone"`
	ClientEmail     string `json:"client_email"`
	ClientAddress   string `json:"client_address"`
	SiteAddress     string `json:"site_address"`

	VehicleRegistration      string `json:"vehicle_registration"`
	VehicleRegistrationOther string `json:"vehicle_registration_other"`
	WasteContainment         string `json:"waste_containment"`
	SICCode                  string `json:"sic_code"`
	SICOther                 string `json:"sic_other"`
	EWC                      string `json:"ewc"`
	EWCOther                 string `json:"ewc_other"`

	WasteDescription     string `json:"waste_description"`
	AmountRemoved        string `json:"amount_removed"`
	DisposalAddress      string `json:"disposal_address"`
	DisposalAddressOther string `json:"disposal_address_other"`

	JobDescription     string `json:"job_description"`
	AdditionalComments string `json:"additional_comments"`
	TimeIn             string `json:"time_in"`
	TimeOut            string `json:"time_out"`

	DriverName   string `json:"driver_name"`
	CustomerName string `json:"customer_name"`

	OperativeSignatureURL string `json:"operative_signature"`
	CustomerSignatureURL  string `json:"customer_signature"`

	PortalooDropoffDate       string   `json:"portaloo_dropoff_date"`
	CarrierRegistrationNumber string   `json:"carrier_registration_number"`
	CreatedBy                 RecordID `json:"created_by"`
}

// Job is the booking a WTN was raised against. Only its dates are consulted.
type Job struct {
	ID                    RecordID `json:"id"`
	CustomerJobReference  string   `json:"customer_job_reference"`
	DateOfService         string   `json:"date_of_service"`
	ArchivedDateOfService string   `json:"archived_date_of_service"`
}

// display returns the trimmed value, or the placeholder when it is blank.
func display(value string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return placeholder
}

// displayPick resolves a controlled-vocabulary pick against its "Other"
// sentinel.
func displayPick(pick, other, sentinel string) string {
	if strings.TrimSpace(pick) == sentinel {
		return display(other)
	}
	return display(pick)
}

// firstNonBlank returns the first value that is not blank.
func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// resolvedDateOfService prefers the note's own date, then the job's.
func (w *WasteTransferNote) resolvedDateOfService(job *Job) string {
	if job == nil {
		return display(w.DateOfService)
	}
	return display(firstNonBlank(w.DateOfService, job.DateOfService, job.ArchivedDateOfService))
}

func (w *WasteTransferNote) displaySIC() string {
	return displayPick(w.SICCode, w.SICOther, sicOtherSentinel)
}

func (w *WasteTransferNote) displayEWC() string {
	return displayPick(w.EWC, w.EWCOther, ewcOtherSentinel)
}

func (w *WasteTransferNote) displayVehicle() string {
	return displayPick(w.VehicleRegistration, w.VehicleRegistrationOther, vehicleOtherSentinel)
}

func (w *WasteTransferNote) displayDisposalAddress() string {
	return displayPick(w.DisposalAddress, w.DisposalAddressOther, disposalOtherSentinel)
}

// timeInOut merges both times into one field. Either missing side shows the
// placeholder; both missing collapses to a single placeholder.
func (w *WasteTransferNote) timeInOut() string {
	in, out := strings.TrimSpace(w.TimeIn), strings.TrimSpace(w.TimeOut)
	if in == "" && out == "" {
		return placeholder
	}
	return display(in) + " – " + display(out)
}

// comments returns the additional comments, or the placeholder.
func (w *WasteTransferNote) comments() string {
	return display(w.AdditionalComments)
}
