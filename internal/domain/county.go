package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// StateFIPS is the two-digit FIPS code for North Carolina.
const StateFIPS = "37"

// ErrUnknownCounty is returned when a county identifier is not in the registry.
var ErrUnknownCounty = errors.New("unknown county")

// County identifies one of the fixed North Carolina counties.
type County struct {
	FIPS string `json:"fips" yaml:"fips"` // 5-digit state+county code, e.g. "37183"
	Name string `json:"name" yaml:"name"` // without the "County" suffix
}

// registry lists all 100 counties. County codes are odd numbers assigned in
// alphabetical order, 001 through 199.
var registry = []County{
	{FIPS: "37001", Name: "Alamance"},
	{FIPS: "37003", Name: "Alexander"},
	{FIPS: "37005", Name: "Alleghany"},
	{FIPS: "37007", Name: "Anson"},
	{FIPS: "37009", Name: "Ashe"},
	{FIPS: "37011", Name: "Avery"},
	{FIPS: "37013", Name: "Beaufort"},
	{FIPS: "37015", Name: "Bertie"},
	{FIPS: "37017", Name: "Bladen"},
	{FIPS: "37019", Name: "Brunswick"},
	{FIPS: "37021", Name: "Buncombe"},
	{FIPS: "37023", Name: "Burke"},
	{FIPS: "37025", Name: "Cabarrus"},
	{FIPS: "37027", Name: "Caldwell"},
	{FIPS: "37029", Name: "Camden"},
	{FIPS: "37031", Name: "Carteret"},
	{FIPS: "37033", Name: "Caswell"},
	{FIPS: "37035", Name: "Catawba"},
	{FIPS: "37037", Name: "Chatham"},
	{FIPS: "37039", Name: "Cherokee"},
	{FIPS: "37041", Name: "Chowan"},
	{FIPS: "37043", Name: "Clay"},
	{FIPS: "37045", Name: "Cleveland"},
	{FIPS: "37047", Name: "Columbus"},
	{FIPS: "37049", Name: "Craven"},
	{FIPS: "37051", Name: "Cumberland"},
	{FIPS: "37053", Name: "Currituck"},
	{FIPS: "37055", Name: "Dare"},
	{FIPS: "37057", Name: "Davidson"},
	{FIPS: "37059", Name: "Davie"},
	{FIPS: "37061", Name: "Duplin"},
	{FIPS: "37063", Name: "Durham"},
	{FIPS: "37065", Name: "Edgecombe"},
	{FIPS: "37067", Name: "Forsyth"},
	{FIPS: "37069", Name: "Franklin"},
	{FIPS: "37071", Name: "Gaston"},
	{FIPS: "37073", Name: "Gates"},
	{FIPS: "37075", Name: "Graham"},
	{FIPS: "37077", Name: "Granville"},
	{FIPS: "37079", Name: "Greene"},
	{FIPS: "37081", Name: "Guilford"},
	{FIPS: "37083", Name: "Halifax"},
	{FIPS: "37085", Name: "Harnett"},
	{FIPS: "37087", Name: "Haywood"},
	{FIPS: "37089", Name: "Henderson"},
	{FIPS: "37091", Name: "Hertford"},
	{FIPS: "37093", Name: "Hoke"},
	{FIPS: "37095", Name: "Hyde"},
	{FIPS: "37097", Name: "Iredell"},
	{FIPS: "37099", Name: "Jackson"},
	{FIPS: "37101", Name: "Johnston"},
	{FIPS: "37103", Name: "Jones"},
	{FIPS: "37105", Name: "Lee"},
	{FIPS: "37107", Name: "Lenoir"},
	{FIPS: "37109", Name: "Lincoln"},
	{FIPS: "37111", Name: "McDowell"},
	{FIPS: "37113", Name: "Macon"},
	{FIPS: "37115", Name: "Madison"},
	{FIPS: "37117", Name: "Martin"},
	{FIPS: "37119", Name: "Mecklenburg"},
	{FIPS: "37121", Name: "Mitchell"},
	{FIPS: "37123", Name: "Montgomery"},
	{FIPS: "37125", Name: "Moore"},
	{FIPS: "37127", Name: "Nash"},
	{FIPS: "37129", Name: "New Hanover"},
	{FIPS: "37131", Name: "Northampton"},
	{FIPS: "37133", Name: "Onslow"},
	{FIPS: "37135", Name: "Orange"},
	{FIPS: "37137", Name: "Pamlico"},
	{FIPS: "37139", Name: "Pasquotank"},
	{FIPS: "37141", Name: "Pender"},
	{FIPS: "37143", Name: "Perquimans"},
	{FIPS: "37145", Name: "Person"},
	{FIPS: "37147", Name: "Pitt"},
	{FIPS: "37149", Name: "Polk"},
	{FIPS: "37151", Name: "Randolph"},
	{FIPS: "37153", Name: "Richmond"},
	{FIPS: "37155", Name: "Robeson"},
	{FIPS: "37157", Name: "Rockingham"},
	{FIPS: "37159", Name: "Rowan"},
	{FIPS: "37161", Name: "Rutherford"},
	{FIPS: "37163", Name: "Sampson"},
	{FIPS: "37165", Name: "Scotland"},
	{FIPS: "37167", Name: "Stanly"},
	{FIPS: "37169", Name: "Stokes"},
	{FIPS: "37171", Name: "Surry"},
	{FIPS: "37173", Name: "Swain"},
	{FIPS: "37175", Name: "Transylvania"},
	{FIPS: "37177", Name: "Tyrrell"},
	{FIPS: "37179", Name: "Union"},
	{FIPS: "37181", Name: "Vance"},
	{FIPS: "37183", Name: "Wake"},
	{FIPS: "37185", Name: "Warren"},
	{FIPS: "37187", Name: "Washington"},
	{FIPS: "37189", Name: "Watauga"},
	{FIPS: "37191", Name: "Wayne"},
	{FIPS: "37193", Name: "Wilkes"},
	{FIPS: "37195", Name: "Wilson"},
	{FIPS: "37197", Name: "Yadkin"},
	{FIPS: "37199", Name: "Yancey"},
}

var (
	byFIPS = indexByFIPS(registry)
	byName = indexByName(registry)
)

func indexByFIPS(cs []County) map[string]County {
	m := make(map[string]County, len(cs))
	for _, c := range cs {
		m[c.FIPS] = c
	}
	return m
}

func indexByName(cs []County) map[string]County {
	m := make(map[string]County, len(cs))
	for _, c := range cs {
		m[strings.ToLower(c.Name)] = c
	}
	return m
}

// Counties returns a copy of the county registry in FIPS order.
func Counties() []County {
	out := make([]County, len(registry))
	copy(out, registry)
	return out
}

// CountyIDs returns the FIPS codes of every registered county in FIPS order.
func CountyIDs() []string {
	ids := make([]string, len(registry))
	for i, c := range registry {
		ids[i] = c.FIPS
	}
	return ids
}

// LookupCounty resolves a county by FIPS code ("37183"), three-digit county
// code ("183"), or name ("Wake", "Wake County"). Matching on names is
// case-insensitive.
func LookupCounty(id string) (County, error) {
	id = strings.TrimSpace(id)
	if c, ok := byFIPS[id]; ok {
		return c, nil
	}
	if len(id) == 3 {
		if c, ok := byFIPS[StateFIPS+id]; ok {
			return c, nil
		}
	}
	name := strings.ToLower(id)
	name = strings.TrimSuffix(name, ", north carolina")
	name = strings.TrimSuffix(name, " county")
	if c, ok := byName[name]; ok {
		return c, nil
	}
	return County{}, fmt.Errorf("%w: %q", ErrUnknownCounty, id)
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
