package template

// FieldType controls how a submitted value is formatted.
type FieldType string

const (
	FieldText      FieldType = "text"
	FieldBoolean   FieldType = "boolean"
	FieldNumber    FieldType = "number"
	FieldArray     FieldType = "array"
	FieldSignature FieldType = "signature"
)

// Field is one labeled value inside a section.
type Field struct {
	Key     string
	Label   string
	Type    FieldType
	Default string
}

// Section is an ordered group of fields rendered under one heading.
type Section struct {
	Key    string
	Title  string
	Fields []Field
}

// Form is the fixed layout of an email body.
type Form struct {
	Heading string
	// Sections render in order.
	Sections []Section
	// SignatureBlock appends a signature notice when a signature is present.
	SignatureBlock bool
	// AddressSummary prefixes the address section with a joined "Full Address" line.
	AddressSummary bool
}

const (
	SectionPersonal = "personal"
	SectionAddress  = "address"
)

var MedicalForm = Form{
	Heading:        "New Dental Medical Form Submission",
	SignatureBlock: true,
	Sections: []Section{
		{
			Key:   SectionPersonal,
			Title: "Personal Information",
			Fields: []Field{
				{Key: "firstName", Label: "First Name", Type: FieldText},
				{Key: "lastName", Label: "Last Name", Type: FieldText},
				{Key: "dateOfBirth", Label: "Date of Birth", Type: FieldText},
				{Key: "phone", Label: "Phone", Type: FieldText},
				{Key: "email", Label: "Email", Type: FieldText},
			},
		},
		{
			Key:   "medical",
			Title: "Medical History",
			Fields: []Field{
				{Key: "epilepsy", Label: "Epilepsy", Type: FieldBoolean},
				{Key: "jaundice", Label: "Jaundice", Type: FieldBoolean},
				{Key: "hypertension", Label: "Hypertension", Type: FieldBoolean},
				{Key: "pastIllnesses", Label: "Past Illnesses", Type: FieldArray},
				{Key: "chronicDiseases", Label: "Chronic Diseases", Type: FieldArray},
				{Key: "implants", Label: "Implants", Type: FieldArray},
				{Key: "infectionHistory", Label: "Infection History", Type: FieldArray},
				{Key: "cut_bleed", Label: "Bleeds Longer After Cuts", Type: FieldBoolean},
				{Key: "allergies", Label: "Allergies", Type: FieldArray},
				{Key: "bleedingDisorders", Label: "Bleeding Disorders", Type: FieldArray},
				{Key: "blood_clot", Label: "Excessive Blood Clotting", Type: FieldBoolean},
				{Key: "asthma", Label: "Bronchial Asthma", Type: FieldBoolean},
				{Key: "tuberculosisHistory", Label: "Tuberculosis History", Type: FieldArray},
				{Key: "pepticUlcerSites", Label: "Peptic Ulcer Sites", Type: FieldArray},
				{Key: "otherDiseases", Label: "Other Diseases", Type: FieldText, Default: "None"},
				{Key: "medications", Label: "Current Medications", Type: FieldText, Default: "None"},
				{Key: "surgeries", Label: "Surgeries History", Type: FieldText, Default: "None"},
				{Key: "cigarettes", Label: "Cigarettes Per Day", Type: FieldNumber, Default: "Not specified"},
				{Key: "alcohol", Label: "Drinks Alcohol Daily", Type: FieldBoolean},
				{Key: "drugs", Label: "Uses Drugs", Type: FieldBoolean},
			},
		},
		{
			Key:   "additional",
			Title: "Additional Details",
			Fields: []Field{
				{Key: "details", Label: "Additional Details", Type: FieldText, Default: "None"},
			},
		},
		{
			Key:   "consent",
			Title: "Consent",
			Fields: []Field{
				{Key: "hipaaConsent", Label: "HIPAA Consent", Type: FieldBoolean},
				{Key: "treatmentConsent", Label: "Treatment Consent", Type: FieldBoolean},
			},
		},
	},
}

var PatientQuestionnaire = Form{
	Heading:        "New Patient Registration",
	AddressSummary: true,
	Sections: []Section{
		{
			Key:   SectionPersonal,
			Title: "Personal Information",
			Fields: []Field{
				{Key: "firstName", Label: "First Name", Type: FieldText},
				{Key: "lastName", Label: "Last Name", Type: FieldText},
				{Key: "dateOfBirth", Label: "Date of Birth", Type: FieldText},
				{Key: "gender", Label: "Gender", Type: FieldText},
				{Key: "phone", Label: "Phone", Type: FieldText},
				{Key: "email", Label: "Email", Type: FieldText},
			},
		},
		{
			Key:   SectionAddress,
			Title: "Address Information",
			Fields: []Field{
				{Key: "address", Label: "Address", Type: FieldText},
				{Key: "city", Label: "City", Type: FieldText},
				{Key: "country", Label: "Country", Type: FieldText},
				{Key: "zipCode", Label: "ZIP Code", Type: FieldText},
			},
		},
		{
			Key:   "emergency",
			Title: "Emergency Contact",
			Fields: []Field{
				{Key: "emergencyName", Label: "Emergency Contact Name", Type: FieldText},
				{Key: "emergencyPhone", Label: "Emergency Contact Phone", Type: FieldText},
				{Key: "emergencyRelationship", Label: "Relationship", Type: FieldText},
			},
		},
		{
			Key:   "referral",
			Title: "How Did You Hear About Us",
			Fields: []Field{
				{Key: "hearAboutUs", Label: "How Did You Hear About Us", Type: FieldText},
				{Key: "referralDetails", Label: "Referral Details", Type: FieldText, Default: "None"},
			},
		},
		{
			Key:   "consent",
			Title: "Consent",
			Fields: []Field{
				{Key: "hipaaConsent", Label: "HIPAA Consent", Type: FieldBoolean},
				{Key: "treatmentConsent", Label: "Treatment Consent", Type: FieldBoolean},
				{Key: "signature", Label: "Signature", Type: FieldSignature},
			},
		},
	},
}
