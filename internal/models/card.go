package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field is one labelled value of a record, in display order.
type Field struct {
	Key   string
	Label string
	Value string
}

// EmployeeRecord holds the front-panel fields of a duty card.
type EmployeeRecord struct {
	SerialNo        string `bson:"serial_no" json:"serial_no"`
	EmployeeCode    string `bson:"employee_code" json:"employee_code"`
	EmployeeName    string `bson:"employee_name" json:"employee_name"`
	Designation     string `bson:"designation" json:"designation"`
	CNIC            string `bson:"cnic" json:"cnic"`
	LicenceNo       string `bson:"licence_no" json:"licence_no"`
	LicenceCategory string `bson:"licence_category" json:"licence_category"`
	LicenceValidity string `bson:"licence_validity" json:"licence_validity"` // Mon-YYYY
	DateOfIssue     string `bson:"date_of_issue" json:"date_of_issue"`       // Mon-YYYY
	ValidUpto       string `bson:"valid_upto" json:"valid_upto"`             // Mon-YYYY
	// Photo is an inline data URL supplied by the client before upload.
	Photo    string `bson:"-" json:"photo,omitempty"`
	PhotoURL string `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
}

// VehicleRecord holds the back-panel fields of a duty card.
type VehicleRecord struct {
	VehicleNo    string `bson:"vehicle_no" json:"vehicle_no"`
	VehicleType  string `bson:"vehicle_type" json:"vehicle_type"`
	ShiftType    string `bson:"shift_type" json:"shift_type"`
	Region       string `bson:"region" json:"region"`
	DepartureBC  string `bson:"departure_bc" json:"departure_bc"`
	InspectionID string `bson:"inspection_id" json:"inspection_id"`
	ValidFrom    string `bson:"valid_from" json:"valid_from"` // Mon-YYYY
	ValidTo      string `bson:"valid_to" json:"valid_to"`     // Mon-YYYY
}

// Card is one printable employee + vehicle duty authorization.
type Card struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Employee  EmployeeRecord     `bson:"employee" json:"employee"`
	Vehicle   VehicleRecord      `bson:"vehicle" json:"vehicle"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// CardRequest is the body accepted by create, update, validate and preview.
type CardRequest struct {
	Employee EmployeeRecord `json:"employee"`
	Vehicle  VehicleRecord  `json:"vehicle"`
}

// HasInlinePhoto reports whether the record carries a not-yet-uploaded image.
func (e EmployeeRecord) HasInlinePhoto() bool {
	return strings.HasPrefix(strings.TrimSpace(e.Photo), "data:")
}

// PhotoSource returns the authoritative photo reference: the inline image
// when present, otherwise the stored URL.
func (e EmployeeRecord) PhotoSource() string {
	if e.HasInlinePhoto() {
		return e.Photo
	}
	if e.PhotoURL != "" {
		return e.PhotoURL
	}
	return e.Photo
}

// Fields lists the employee fields in form order. The photo entry carries
// the authoritative photo source.
func (e EmployeeRecord) Fields() []Field {
	return []Field{
		{Key: "serial_no", Label: "Serial No", Value: e.SerialNo},
		{Key: "employee_code", Label: "Employee Code", Value: e.EmployeeCode},
		{Key: "employee_name", Label: "Employee Name", Value: e.EmployeeName},
		{Key: "designation", Label: "Designation", Value: e.Designation},
		{Key: "cnic", Label: "CNIC No", Value: e.CNIC},
		{Key: "licence_no", Label: "Licence No", Value: e.LicenceNo},
		{Key: "licence_category", Label: "Licence Category", Value: e.LicenceCategory},
		{Key: "licence_validity", Label: "Licence Validity", Value: e.LicenceValidity},
		{Key: "date_of_issue", Label: "Date of Issue", Value: e.DateOfIssue},
		{Key: "valid_upto", Label: "Valid Upto", Value: e.ValidUpto},
		{Key: "photo", Label: "Employee Photo", Value: e.PhotoSource()},
	}
}

// Fields lists the vehicle fields in form order.
func (v VehicleRecord) Fields() []Field {
	return []Field{
		{Key: "vehicle_no", Label: "Vehicle No", Value: v.VehicleNo},
		{Key: "vehicle_type", Label: "Vehicle Type", Value: v.VehicleType},
		{Key: "shift_type", Label: "Shift Type", Value: v.ShiftType},
		{Key: "region", Label: "Region", Value: v.Region},
		{Key: "departure_bc", Label: "Departure / BC", Value: v.DepartureBC},
		{Key: "inspection_id", Label: "Inspection ID", Value: v.InspectionID},
		{Key: "valid_from", Label: "Valid From", Value: v.ValidFrom},
		{Key: "valid_to", Label: "Valid To", Value: v.ValidTo},
	}
}

// SearchText returns the lower-cased values the card list is searched on.
func (c Card) SearchText() []string {
	return []string{
		strings.ToLower(c.Employee.SerialNo),
		strings.ToLower(c.Employee.EmployeeCode),
		strings.ToLower(c.Employee.EmployeeName),
		strings.ToLower(c.Employee.CNIC),
		strings.ToLower(c.Vehicle.VehicleNo),
		strings.ToLower(c.Employee.Designation),
		strings.ToLower(c.Vehicle.Region),
		strings.ToLower(c.Vehicle.InspectionID),
	}
}
