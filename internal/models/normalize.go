package models

import (
	"strings"

	"github.com/ukydev/office-duty-card/internal/format"
)

// Normalize trims every field, converts month inputs to Mon-YYYY, masks the
// CNIC and derives ValidUpto from DateOfIssue when it was left empty.
func (e EmployeeRecord) Normalize() EmployeeRecord {
	e.SerialNo = strings.TrimSpace(e.SerialNo)
	e.EmployeeCode = strings.TrimSpace(e.EmployeeCode)
	e.EmployeeName = strings.TrimSpace(e.EmployeeName)
	e.Designation = strings.TrimSpace(e.Designation)
	if cnic := strings.TrimSpace(e.CNIC); cnic != "" {
		e.CNIC = format.NationalID(cnic)
	} else {
		e.CNIC = ""
	}
	e.LicenceNo = strings.TrimSpace(e.LicenceNo)
	e.LicenceCategory = strings.TrimSpace(e.LicenceCategory)
	e.LicenceValidity = format.NormalizeMonth(e.LicenceValidity)
	e.DateOfIssue = format.NormalizeMonth(e.DateOfIssue)
	e.ValidUpto = format.NormalizeMonth(e.ValidUpto)
	if e.ValidUpto == "" {
		e.ValidUpto = format.AddOneYear(e.DateOfIssue)
	}
	e.Photo = strings.TrimSpace(e.Photo)
	e.PhotoURL = strings.TrimSpace(e.PhotoURL)
	return e
}

// Normalize trims every field, converts month inputs to Mon-YYYY and derives
// ValidTo from ValidFrom when it was left empty.
func (v VehicleRecord) Normalize() VehicleRecord {
	v.VehicleNo = strings.TrimSpace(v.VehicleNo)
	v.VehicleType = strings.TrimSpace(v.VehicleType)
	v.ShiftType = strings.TrimSpace(v.ShiftType)
	v.Region = strings.TrimSpace(v.Region)
	v.DepartureBC = strings.TrimSpace(v.DepartureBC)
	v.InspectionID = strings.TrimSpace(v.InspectionID)
	v.ValidFrom = format.NormalizeMonth(v.ValidFrom)
	v.ValidTo = format.NormalizeMonth(v.ValidTo)
	if v.ValidTo == "" {
		v.ValidTo = format.AddOneYear(v.ValidFrom)
	}
	return v
}
