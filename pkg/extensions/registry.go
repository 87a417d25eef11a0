// Package extensions is the static registry of entity extension types. The
// registry is declared at compile time; there is no runtime schema
// discovery.
package extensions

import (
	"fmt"
	"sort"
)

// Well-known definition ids referenced across the codebase.
const (
	PersonID                = 1
	OrgID                   = 2
	PoliticalCandidateID    = 3
	ElectedRepresentativeID = 4
	BusinessID              = 5
	GovernmentBodyID        = 6
	SchoolID                = 7
	MembershipOrgID         = 8
	PhilanthropyID          = 9
	NonProfitID             = 10
	PoliticalFundraisingID  = 11
	PrivateCompanyID        = 12
	PublicCompanyID         = 13
	IndustryTradeID         = 14
	LawFirmID               = 15
	LobbyingFirmID          = 16
	PacID                   = 19
	MediaOrgID              = 21
	ThinkTankID             = 22
	SocialClubID            = 24
	PoliticalPartyID        = 26
	LaborUnionID            = 27
	BusinessPersonID        = 29
	LobbyistID              = 30
	AcademicID              = 31
	ConsultingFirmID        = 33
	PublicOfficialID        = 35
	LawyerID                = 36
)

// Parent types an extension can apply to.
const (
	ParentPerson = "Person"
	ParentOrg    = "Org"
	ParentBoth   = "Both"
)

// Field types in extension schemas.
const (
	FieldString  = "string"
	FieldInteger = "integer"
	FieldBoolean = "boolean"
	FieldFloat   = "float"
)

// Field is one attribute in an extension's schema.
type Field struct {
	Name string
	Type string
}

// Definition describes one extension type. Tier 1 definitions are the two
// primary types; tier 2 definitions carry no fields; tier 3 definitions
// have their own attribute set.
type Definition struct {
	ID          int
	Name        string
	DisplayName string
	Tier        int
	Parent      string
	Fields      []Field
}

// HasFields reports whether records of this extension carry attributes.
func (d Definition) HasFields() bool {
	return len(d.Fields) > 0
}

var definitions = []Definition{
	{ID: PersonID, Name: "Person", DisplayName: "Person", Tier: 1, Parent: ParentPerson, Fields: []Field{
		{Name: "name_last", Type: FieldString},
		{Name: "name_first", Type: FieldString},
		{Name: "name_middle", Type: FieldString},
		{Name: "name_prefix", Type: FieldString},
		{Name: "name_suffix", Type: FieldString},
		{Name: "name_nick", Type: FieldString},
		{Name: "birthplace", Type: FieldString},
		{Name: "gender_id", Type: FieldInteger},
		{Name: "party_id", Type: FieldInteger},
		{Name: "is_independent", Type: FieldBoolean},
		{Name: "net_worth", Type: FieldInteger},
	}},
	{ID: OrgID, Name: "Org", DisplayName: "Organization", Tier: 1, Parent: ParentOrg, Fields: []Field{
		{Name: "name", Type: FieldString},
		{Name: "name_nick", Type: FieldString},
		{Name: "employees", Type: FieldInteger},
		{Name: "revenue", Type: FieldInteger},
		{Name: "fedspending_id", Type: FieldString},
		{Name: "lda_registrant_id", Type: FieldString},
	}},
	{ID: PoliticalCandidateID, Name: "PoliticalCandidate", DisplayName: "Political Candidate", Tier: 3, Parent: ParentPerson, Fields: []Field{
		{Name: "is_federal", Type: FieldBoolean},
		{Name: "is_state", Type: FieldBoolean},
		{Name: "is_local", Type: FieldBoolean},
		{Name: "pres_fec_id", Type: FieldString},
		{Name: "senate_fec_id", Type: FieldString},
		{Name: "house_fec_id", Type: FieldString},
		{Name: "crp_id", Type: FieldString},
	}},
	{ID: ElectedRepresentativeID, Name: "ElectedRepresentative", DisplayName: "Elected Representative", Tier: 3, Parent: ParentPerson, Fields: []Field{
		{Name: "bioguide_id", Type: FieldString},
		{Name: "govtrack_id", Type: FieldString},
		{Name: "crp_id", Type: FieldString},
		{Name: "watchdog_id", Type: FieldString},
	}},
	{ID: BusinessID, Name: "Business", DisplayName: "Business", Tier: 3, Parent: ParentOrg, Fields: []Field{
		{Name: "annual_profit", Type: FieldInteger},
		{Name: "assets", Type: FieldInteger},
		{Name: "marketcap", Type: FieldInteger},
		{Name: "net_income", Type: FieldInteger},
	}},
	{ID: GovernmentBodyID, Name: "GovernmentBody", DisplayName: "Government Body", Tier: 3, Parent: ParentOrg, Fields: []Field{
		{Name: "is_federal", Type: FieldBoolean},
		{Name: "state_id", Type: FieldInteger},
		{Name: "city", Type: FieldString},
		{Name: "county", Type: FieldString},
	}},
	{ID: SchoolID, Name: "School", DisplayName: "School", Tier: 3, Parent: ParentOrg, Fields: []Field{
		{Name: "endowment", Type: FieldInteger},
		{Name: "students", Type: FieldInteger},
		{Name: "faculty", Type: FieldInteger},
		{Name: "tuition", Type: FieldInteger},
		{Name: "is_private", Type: FieldBoolean},
	}},
	{ID: MembershipOrgID, Name: "MembershipOrg", DisplayName: "Membership Organization", Tier: 2, Parent: ParentOrg},
	{ID: PhilanthropyID, Name: "Philanthropy", DisplayName: "Philanthropy", Tier: 2, Parent: ParentOrg},
	{ID: NonProfitID, Name: "NonProfit", DisplayName: "Non-profit", Tier: 2, Parent: ParentOrg},
	{ID: PoliticalFundraisingID, Name: "PoliticalFundraising", DisplayName: "Political Fundraising Committee", Tier: 3, Parent: ParentOrg, Fields: []Field{
		{Name: "fec_id", Type: FieldString},
		{Name: "type_id", Type: FieldInteger},
		{Name: "state_id", Type: FieldInteger},
	}},
	{ID: PrivateCompanyID, Name: "PrivateCompany", DisplayName: "Private Company", Tier: 2, Parent: ParentOrg},
	{ID: PublicCompanyID, Name: "PublicCompany", DisplayName: "Public Company", Tier: 3, Parent: ParentOrg, Fields: []Field{
		{Name: "ticker", Type: FieldString},
		{Name: "sec_cik", Type: FieldInteger},
	}},
	{ID: IndustryTradeID, Name: "IndustryTrade", DisplayName: "Industry/Trade Association", Tier: 2, Parent: ParentOrg},
	{ID: LawFirmID, Name: "LawFirm", DisplayName: "Law Firm", Tier: 2, Parent: ParentOrg},
	{ID: LobbyingFirmID, Name: "LobbyingFirm", DisplayName: "Lobbying Firm", Tier: 2, Parent: ParentOrg},
	{ID: PacID, Name: "Pac", DisplayName: "PAC", Tier: 2, Parent: ParentOrg},
	{ID: MediaOrgID, Name: "MediaOrg", DisplayName: "Media Organization", Tier: 2, Parent: ParentOrg},
	{ID: ThinkTankID, Name: "ThinkTank", DisplayName: "Policy/Think Tank", Tier: 2, Parent: ParentOrg},
	{ID: SocialClubID, Name: "SocialClub", DisplayName: "Social Club", Tier: 2, Parent: ParentOrg},
	{ID: PoliticalPartyID, Name: "PoliticalParty", DisplayName: "Political Party", Tier: 2, Parent: ParentOrg},
	{ID: LaborUnionID, Name: "LaborUnion", DisplayName: "Labor Union", Tier: 2, Parent: ParentOrg},
	{ID: BusinessPersonID, Name: "BusinessPerson", DisplayName: "Business Person", Tier: 3, Parent: ParentPerson, Fields: []Field{
		{Name: "sec_cik", Type: FieldInteger},
	}},
	{ID: LobbyistID, Name: "Lobbyist", DisplayName: "Lobbyist", Tier: 3, Parent: ParentPerson, Fields: []Field{
		{Name: "lda_reg_no", Type: FieldString},
	}},
	{ID: AcademicID, Name: "Academic", DisplayName: "Academic", Tier: 2, Parent: ParentPerson},
	{ID: ConsultingFirmID, Name: "ConsultingFirm", DisplayName: "Consulting Firm", Tier: 2, Parent: ParentOrg},
	{ID: PublicOfficialID, Name: "PublicOfficial", DisplayName: "Public Official", Tier: 2, Parent: ParentPerson},
	{ID: LawyerID, Name: "Lawyer", DisplayName: "Lawyer", Tier: 2, Parent: ParentPerson},
}

var byID = func() map[int]Definition {
	m := make(map[int]Definition, len(definitions))
	for _, d := range definitions {
		m[d.ID] = d
	}
	return m
}()

var byName = func() map[string]Definition {
	m := make(map[string]Definition, len(definitions))
	for _, d := range definitions {
		m[d.Name] = d
	}
	return m
}()

// DefinitionByID looks up an extension definition by id.
func DefinitionByID(id int) (Definition, error) {
	d, ok := byID[id]
	if !ok {
		return Definition{}, fmt.Errorf("unknown extension definition id %d", id)
	}
	return d, nil
}

// DefinitionByName looks up an extension definition by name.
func DefinitionByName(name string) (Definition, error) {
	d, ok := byName[name]
	if !ok {
		return Definition{}, fmt.Errorf("unknown extension definition %q", name)
	}
	return d, nil
}

// DefinitionsFor returns addon definitions applicable to the given primary
// extension, sorted by name. Tier 1 definitions are excluded.
func DefinitionsFor(parent string) []Definition {
	var out []Definition
	for _, d := range definitions {
		if d.Tier == 1 {
			continue
		}
		if d.Parent == parent || d.Parent == ParentBoth {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DisplayNames returns the id to display-name lookup.
func DisplayNames() map[int]string {
	m := make(map[int]string, len(definitions))
	for _, d := range definitions {
		m[d.ID] = d.DisplayName
	}
	return m
}

// FieldsFor returns the field schema for the definition, empty for tier 2.
func FieldsFor(id int) []Field {
	d, ok := byID[id]
	if !ok {
		return nil
	}
	return d.Fields
}
