package dataobject

// PRINTED INFORMATION (SP 800-73-4 Part 1, Table 20):
// ASCII fields printed on the card face.
//
//   - '01' Name, '02' Employee Affiliation, '03' Reserved, '04' Expiration date (YYYYMMMDD),
//   - '05' Agency Card Serial Number, '06' Issuer Identification,
//   - '07' Organization Affiliation (Line 1), '08' Organization Affiliation (Line 2),
//   - 'FE' Error Detection Code.

type PrintedInformationFields struct {
	Name                     []byte `tlv:"01" fmt:"ascii"`
	EmployeeAffiliation      []byte `tlv:"02" fmt:"ascii"`
	ExpirationDate           []byte `tlv:"04" fmt:"ascii"`
	AgencyCardSerialNumber   []byte `tlv:"05" fmt:"ascii"`
	IssuerIdentification     []byte `tlv:"06" fmt:"ascii"`
	OrganizationAffiliation1 []byte `tlv:"07" fmt:"ascii"`
	OrganizationAffiliation2 []byte `tlv:"08" fmt:"ascii"`
	ErrorDetectionCode       bool   `tlv:"FE,presence"`
}

type PrintedInformation struct {
	Object
	PrintedInformationFields
}

func NewPrintedInformation() *PrintedInformation {
	p := &PrintedInformation{}
	p.SetOID(OIDPrintedInformation)
	return p
}

func (p *PrintedInformation) Decode() error {
	p.PrintedInformationFields = PrintedInformationFields{}
	return p.decode(&p.PrintedInformationFields)
}

func (p *PrintedInformation) Describe() string {
	return describe(&p.Object, "Printed", p.PrintedInformationFields)
}
