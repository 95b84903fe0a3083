// Package model defines the core family tree data types.
package model

import "fmt"

// Gender is the binary gender used by the name tables.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Genders lists the supported genders in a fixed order so random draws
// over them are reproducible.
var Genders = []Gender{Male, Female}

// ValidGenders are the allowed gender values.
var ValidGenders = map[Gender]bool{
	Male:   true,
	Female: true,
}

// ParseGender maps the spellings found in the name tables ("male", "M",
// "Female", "f") to a Gender.
func ParseGender(s string) (Gender, error) {
	switch s {
	case "male", "Male", "MALE", "m", "M":
		return Male, nil
	case "female", "Female", "FEMALE", "f", "F":
		return Female, nil
	}
	return "", fmt.Errorf("unknown gender %q", s)
}

// Person is one generated individual. Partner and children are held as
// ids and resolved through the population store.
type Person struct {
	ID        string   `json:"id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	YearBorn  int      `json:"year_born"`
	YearDied  int      `json:"year_died"`
	Gender    Gender   `json:"gender"`
	PartnerID string   `json:"partner_id,omitempty"`
	ChildIDs  []string `json:"child_ids,omitempty"`
}

// FullName returns "First Last".
func (p *Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

// HasPartner reports whether a partner has been linked.
func (p *Person) HasPartner() bool {
	return p.PartnerID != ""
}

func (p *Person) String() string {
	return fmt.Sprintf("%s (%d-%d)", p.FullName(), p.YearBorn, p.YearDied)
}
