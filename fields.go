package main

import (
	"fmt"
)

// ---------------------------------------------------------------------------
// Field Catalog
// ---------------------------------------------------------------------------

// fieldItem is one label/value pair ready for layout.
type fieldItem struct {
	label string
	value string
}

// fieldDef describes how a catalog key is labelled and where its value comes
// from. Values pass through display, so they are never blank.
type fieldDef struct {
	label string
	value func(w *WasteTransferNote, job *Job) string
}

var fieldCatalog = map[string]fieldDef{
	"date_of_service": {"Date of Service", func(w *WasteTransferNote, job *Job) string {
		return w.resolvedDateOfService(job)
	}},
	"customer_job_reference": {"Customer Job Reference", func(w *WasteTransferNote, _ *Job) string {
		return display(w.CustomerJobReference)
	}},
	"job_description": {"Job Description", func(w *WasteTransferNote, _ *Job) string {
		return display(w.JobDescription)
	}},
	"time_in_out": {"Time In / Time Out", func(w *WasteTransferNote, _ *Job) string {
		return w.timeInOut()
	}},
	"waste_containment": {"Waste Containment", func(w *WasteTransferNote, _ *Job) string {
		return display(w.WasteContainment)
	}},
	"vehicle_registration": {"Vehicle Registration", func(w *WasteTransferNote, _ *Job) string {
		return w.displayVehicle()
	}},
	"driver_name": {"Driver Name", func(w *WasteTransferNote, _ *Job) string {
		return display(w.DriverName)
	}},
	"client_name": {"Client Name", func(w *WasteTransferNote, _ *Job) string {
		return display(w.ClientName)
	}},
	"customer_name": {"Customer Name", func(w *WasteTransferNote, _ *Job) string {
		return display(w.CustomerName)
	}},
	"site_address": {"Site Address", func(w *WasteTransferNote, _ *Job) string {
		return display(w.SiteAddress)
	}},
	"client_address": {"Client Address", func(w *WasteTransferNote, _ *Job) string {
		return display(w.ClientAddress)
	}},
	"client_email": {"Client Email", func(w *WasteTransferNote, _ *Job) string {
		return display(w.ClientEmail)
	}},
	"client_telephone": {"Client Telephone", func(w *WasteTransferNote, _ *Job) string {
		return display(w.ClientTelephone)
	}},
	"sic_code": {"SIC Code", func(w *WasteTransferNote, _ *Job) string {
		return w.displaySIC()
	}},
	"ewc": {"EWC Code", func(w *WasteTransferNote, _ *Job) string {
		return w.displayEWC()
	}},
	"waste_description": {"Waste Description", func(w *WasteTransferNote, _ *Job) string {
		return display(w.WasteDescription)
	}},
	"amount_removed": {"Amount Removed", func(w *WasteTransferNote, _ *Job) string {
		return display(w.AmountRemoved)
	}},
	"disposal_address": {"Disposal Address", func(w *WasteTransferNote, _ *Job) string {
		return w.displayDisposalAddress()
	}},
	"portaloo_dropoff_date": {"Portaloo Drop-off Date", func(w *WasteTransferNote, _ *Job) string {
		return display(w.PortalooDropoffDate)
	}},
	"carrier_registration_number": {"Carrier Registration Number", func(w *WasteTransferNote, _ *Job) string {
		return display(w.CarrierRegistrationNumber)
	}},
}

// SectionConfig lists the catalog keys shown in each column of a data
// section.
type SectionConfig struct {
	Title string   `yaml:"title"`
	Left  []string `yaml:"left"`
	Right []string `yaml:"right"`
}

var defaultSections = []SectionConfig{
	{
		Title: "Job Details",
		Left:  []string{"date_of_service", "customer_job_reference", "job_description", "time_in_out"},
		Right: []string{"waste_containment", "vehicle_registration", "driver_name"},
	},
	{
		Title: "Client Details",
		Left:  []string{"client_name", "customer_name"},
		Right: []string{"site_address", "client_email", "client_telephone"},
	},
	{
		Title: "Waste Details",
		Left:  []string{"sic_code", "ewc", "waste_description"},
		Right: []string{"amount_removed", "disposal_address"},
	},
}

// validate checks that every key is known and the section is not empty.
func (s SectionConfig) validate() error {
	if s.Title == "" {
		return fmt.Errorf("section without title")
	}
	if len(s.Left)+len(s.Right) == 0 {
		return fmt.Errorf("section %q has no fields", s.Title)
	}
	for _, key := range append(append([]string{}, s.Left...), s.Right...) {
		if _, ok := fieldCatalog[key]; !ok {
			return fmt.Errorf("unknown field %q in section %q", key, s.Title)
		}
	}
	return nil
}

// items resolves the section's columns against a record.
func (s SectionConfig) items(w *WasteTransferNote, job *Job) (left, right []fieldItem) {
	return resolveFields(s.Left, w, job), resolveFields(s.Right, w, job)
}

func resolveFields(keys []string, w *WasteTransferNote, job *Job) []fieldItem {
	items := make([]fieldItem, 0, len(keys))
	for _, key := range keys {
		def, ok := fieldCatalog[key]
		if !ok {
			continue
		}
		items = append(items, fieldItem{label: def.label, value: def.value(w, job)})
	}
	return items
}
