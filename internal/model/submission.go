package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// MedicalFormRequest is the body of POST /api/send-medical-form.
type MedicalFormRequest struct {
	FormData *MedicalForm `json:"formData" binding:"required"`
	Lang     string       `json:"lang"`
}

// PatientQuestionnaireRequest is the body of POST /api/send-patient-questionnaire.
type PatientQuestionnaireRequest struct {
	PatientData *PatientQuestionnaire `json:"patientData" binding:"required"`
	Lang        string                `json:"lang"`
}

// MedicalForm is the dental medical-history form.
type MedicalForm struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`

	Epilepsy            FlexBool   `json:"epilepsy"`
	Jaundice            FlexBool   `json:"jaundice"`
	Hypertension        FlexBool   `json:"hypertension"`
	PastIllnesses       FlexList   `json:"pastIllnesses"`
	ChronicDiseases     FlexList   `json:"chronicDiseases"`
	Implants            FlexList   `json:"implants"`
	InfectionHistory    FlexList   `json:"infectionHistory"`
	CutBleed            FlexBool   `json:"cut_bleed"`
	Allergies           FlexList   `json:"allergies"`
	BleedingDisorders   FlexList   `json:"bleedingDisorders"`
	BloodClot           FlexBool   `json:"blood_clot"`
	Asthma              FlexBool   `json:"asthma"`
	TuberculosisHistory FlexList   `json:"tuberculosisHistory"`
	PepticUlcerSites    FlexList   `json:"pepticUlcerSites"`
	OtherDiseases       string     `json:"otherDiseases"`
	Medications         string     `json:"medications"`
	Surgeries           string     `json:"surgeries"`
	Cigarettes          FlexNumber `json:"cigarettes"`
	Alcohol             FlexBool   `json:"alcohol"`
	Drugs               FlexBool   `json:"drugs"`

	Details string `json:"details"`

	HipaaConsent     FlexBool `json:"hipaaConsent"`
	TreatmentConsent FlexBool `json:"treatmentConsent"`
	Signature        string   `json:"signature"`
}

// Values exposes the form by field key for the renderer. Absent optional
// values are left out so the renderer applies its defaults.
func (f *MedicalForm) Values() map[string]any {
	v := map[string]any{}
	putString(v, "firstName", f.FirstName)
	putString(v, "lastName", f.LastName)
	putString(v, "dateOfBirth", f.DateOfBirth)
	putString(v, "phone", f.Phone)
	putString(v, "email", f.Email)

	putBool(v, "epilepsy", f.Epilepsy)
	putBool(v, "jaundice", f.Jaundice)
	putBool(v, "hypertension", f.Hypertension)
	putList(v, "pastIllnesses", f.PastIllnesses)
	putList(v, "chronicDiseases", f.ChronicDiseases)
	putList(v, "implants", f.Implants)
	putList(v, "infectionHistory", f.InfectionHistory)
	putBool(v, "cut_bleed", f.CutBleed)
	putList(v, "allergies", f.Allergies)
	putList(v, "bleedingDisorders", f.BleedingDisorders)
	putBool(v, "blood_clot", f.BloodClot)
	putBool(v, "asthma", f.Asthma)
	putList(v, "tuberculosisHistory", f.TuberculosisHistory)
	putList(v, "pepticUlcerSites", f.PepticUlcerSites)
	putString(v, "otherDiseases", f.OtherDiseases)
	putString(v, "medications", f.Medications)
	putString(v, "surgeries", f.Surgeries)
	if f.Cigarettes.Valid {
		v["cigarettes"] = f.Cigarettes
	}
	putBool(v, "alcohol", f.Alcohol)
	putBool(v, "drugs", f.Drugs)
	putString(v, "details", f.Details)
	putBool(v, "hipaaConsent", f.HipaaConsent)
	putBool(v, "treatmentConsent", f.TreatmentConsent)
	putString(v, "signature", f.Signature)
	return v
}

// PatientQuestionnaire is the new-patient registration form.
type PatientQuestionnaire struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zipCode"`

	// Both spellings are in circulation among form revisions.
	EmergencyContactName         string `json:"emergencyContactName"`
	EmergencyContactPhone        string `json:"emergencyContactPhone"`
	EmergencyContactRelationship string `json:"emergencyContactRelationship"`
	EmergencyName                string `json:"emergencyName"`
	EmergencyPhone               string `json:"emergencyPhone"`
	EmergencyRelationship        string `json:"emergencyRelationship"`

	HearAboutUs     string `json:"hearAboutUs"`
	ReferralDetails string `json:"referralDetails"`

	HipaaConsent     FlexBool `json:"hipaaConsent"`
	TreatmentConsent FlexBool `json:"treatmentConsent"`
	Signature        string `json:"signature"`
}

// EmergencyContact resolves the emergency-contact triple, preferring the
// emergencyContact* keys over the short emergency* keys.
func (q *PatientQuestionnaire) EmergencyContact() (name, phone, relationship string) {
	return firstNonEmpty(q.EmergencyContactName, q.EmergencyName),
		firstNonEmpty(q.EmergencyContactPhone, q.EmergencyPhone),
		firstNonEmpty(q.EmergencyContactRelationship, q.EmergencyRelationship)
}

// Values exposes the questionnaire by field key for the renderer.
func (q *PatientQuestionnaire) Values() map[string]any {
	v := map[string]any{}
	putString(v, "firstName", q.FirstName)
	putString(v, "lastName", q.LastName)
	putString(v, "dateOfBirth", q.DateOfBirth)
	putString(v, "gender", q.Gender)
	putString(v, "phone", q.Phone)
	putString(v, "email", q.Email)
	putString(v, "address", q.Address)
	putString(v, "city", q.City)
	putString(v, "state", q.State)
	putString(v, "country", q.Country)
	putString(v, "zipCode", q.ZipCode)

	name, phone, relationship := q.EmergencyContact()
	putString(v, "emergencyName", name)
	putString(v, "emergencyPhone", phone)
	putString(v, "emergencyRelationship", relationship)

	putString(v, "hearAboutUs", q.HearAboutUs)
	putString(v, "referralDetails", q.ReferralDetails)
	v["hipaaConsent"] = q.HipaaConsent.True()
	v["treatmentConsent"] = q.TreatmentConsent.True()
	putString(v, "signature", q.Signature)
	return v
}

// FlexNumber accepts a JSON number, a numeric string, or null/"".
type FlexNumber struct {
	Value float64
	Valid bool
}

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = FlexNumber{}
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*n = FlexNumber{}
			return nil
		}
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", raw)
	}
	*n = FlexNumber{Value: f, Valid: true}
	return nil
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(n.String()), nil
}

func (n FlexNumber) String() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// FlexBool accepts a JSON boolean, a number, a yes/no style string, or null.
// Unrecognised non-empty strings count as true.
type FlexBool struct {
	Value bool
	Valid bool
}

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*b = FlexBool{}
	case bool:
		*b = FlexBool{Value: v, Valid: true}
	case float64:
		*b = FlexBool{Value: v != 0, Valid: true}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "false", "no", "n", "off", "0":
			*b = FlexBool{Valid: true}
		default:
			*b = FlexBool{Value: true, Valid: true}
		}
	default:
		return &json.UnmarshalTypeError{Value: string(data), Type: reflect.TypeOf(b).Elem()}
	}
	return nil
}

func (b FlexBool) MarshalJSON() ([]byte, error) {
	if !b.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(b.Value)
}

// True reports a present, true value.
func (b FlexBool) True() bool {
	return b.Valid && b.Value
}

// FlexList accepts a JSON array or a comma-separated string. Empty items
// are dropped; null and "" leave the list nil.
type FlexList []string

func (l *FlexList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*l = nil
	case string:
		var items FlexList
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		*l = items
	case []any:
		items := make(FlexList, 0, len(v))
		for _, item := range v {
			switch it := item.(type) {
			case string:
				items = append(items, it)
			case float64, bool:
				items = append(items, fmt.Sprint(it))
			default:
				return &json.UnmarshalTypeError{Value: "array item", Type: reflect.TypeOf("")}
			}
		}
		*l = items
	default:
		return &json.UnmarshalTypeError{Value: string(data), Type: reflect.TypeOf(l).Elem()}
	}
	return nil
}

func putString(v map[string]any, key, s string) {
	if s != "" {
		v[key] = s
	}
}

func putBool(v map[string]any, key string, b FlexBool) {
	if b.Valid {
		v[key] = b.Value
	}
}

func putList(v map[string]any, key string, l FlexList) {
	if l != nil {
		v[key] = []string(l)
	}
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
