// Package validation checks card submissions before they reach the store.
package validation

import (
	"context"

	"github.com/ukydev/office-duty-card/internal/format"
	"github.com/ukydev/office-duty-card/internal/models"
)

// Errors maps a field key to a human-readable message.
type Errors map[string]string

// Messages used in error maps.
const (
	MsgCNICFormat     = "CNIC format invalid. Use: " + format.NationalIDPlaceholder
	MsgDuplicateSN    = "Serial No already exists!"
	MsgDuplicateCode  = "Employee Code already exists!"
	MsgDuplicateCNIC  = "CNIC already registered!"
	MsgLookupFailed   = "Error checking database. Please try again."
	requiredSuffix    = " is required"
	fieldSerialNo     = "serial_no"
	fieldEmployeeCode = "employee_code"
	fieldCNIC         = "cnic"
)

// RequiredEmployeeFields lists the employee keys that must be non-empty.
var RequiredEmployeeFields = []string{
	"serial_no", "employee_code", "employee_name", "designation", "cnic",
	"licence_no", "licence_category", "licence_validity", "date_of_issue",
	"valid_upto", "photo",
}

// RequiredVehicleFields lists the vehicle keys that must be non-empty.
var RequiredVehicleFields = []string{
	"vehicle_no", "vehicle_type", "shift_type", "region", "departure_bc",
	"inspection_id", "valid_from", "valid_to",
}

func required(fields []models.Field, keys []string) Errors {
	errs := Errors{}
	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}
	for _, f := range fields {
		if wanted[f.Key] && f.Value == "" {
			errs[f.Key] = f.Label + requiredSuffix
		}
	}
	return errs
}

// ValidateFields runs the synchronous required-field and CNIC format checks.
func ValidateFields(emp models.EmployeeRecord, veh models.VehicleRecord) (Errors, Errors) {
	empErrs := required(emp.Fields(), RequiredEmployeeFields)
	vehErrs := required(veh.Fields(), RequiredVehicleFields)

	if emp.CNIC != "" && !format.IsNationalID(emp.CNIC) {
		empErrs[fieldCNIC] = MsgCNICFormat
	}
	return empErrs, vehErrs
}

// Lookup finds cards whose employee field equals value.
type Lookup interface {
	FindCardsByEmployeeField(ctx context.Context, field, value string) ([]models.Card, error)
}

// CheckUniqueness looks up serial no, employee code and a well-formed CNIC
// independently. A match belonging to any card other than editingID is a
// duplicate; a failed lookup blocks the field with a generic message.
func CheckUniqueness(ctx context.Context, lookup Lookup, emp models.EmployeeRecord, isEditing bool, editingID string) Errors {
	errs := Errors{}

	checks := []struct {
		field, value, msg string
	}{
		{fieldSerialNo, emp.SerialNo, MsgDuplicateSN},
		{fieldEmployeeCode, emp.EmployeeCode, MsgDuplicateCode},
	}
	if emp.CNIC != "" && format.IsNationalID(emp.CNIC) {
		checks = append(checks, struct{ field, value, msg string }{fieldCNIC, emp.CNIC, MsgDuplicateCNIC})
	}

	for _, c := range checks {
		if c.value == "" {
			continue
		}
		matches, err := lookup.FindCardsByEmployeeField(ctx, c.field, c.value)
		if err != nil {
			errs[c.field] = MsgLookupFailed
			continue
		}
		for _, m := range matches {
			if !isEditing || m.ID.Hex() != editingID {
				errs[c.field] = c.msg
				break
			}
		}
	}
	return errs
}

// Result is the outcome of a full submission check.
type Result struct {
	Employee Errors `json:"employee"`
	Vehicle  Errors `json:"vehicle"`
}

// OK reports whether submission may proceed.
func (r Result) OK() bool {
	return len(r.Employee) == 0 && len(r.Vehicle) == 0
}

// Validator combines the field checks with the uniqueness lookups.
type Validator struct {
	lookup Lookup
}

// NewValidator creates a validator backed by the given lookup.
func NewValidator(lookup Lookup) *Validator {
	return &Validator{lookup: lookup}
}

// Validate checks a submission. editingID is empty when creating.
func (v *Validator) Validate(ctx context.Context, emp models.EmployeeRecord, veh models.VehicleRecord, editingID string) Result {
	empErrs, vehErrs := ValidateFields(emp, veh)
	// Duplicate messages replace format messages for the same key.
	for k, msg := range CheckUniqueness(ctx, v.lookup, emp, editingID != "", editingID) {
		empErrs[k] = msg
	}
	return Result{Employee: empErrs, Vehicle: vehErrs}
}
