package domain

import "strings"

// Endorsement is a certification a teacher may hold, or the endorsement a
// course requires of its teacher. Compound endorsements (e.g.
// "Science-Biology") carry a department prefix before the first dash.
type Endorsement string

// Department groups endorsements for the purposes of IEP inclusion/
// separate-class tagging.
type Department string

const (
	DeptEnglish       Department = "english"
	DeptMath          Department = "math"
	DeptSocialScience Department = "social-science"
	DeptWorldLanguage Department = "world-language"
	DeptScience       Department = "science"
	DeptArt           Department = "art"
	DeptCTE           Department = "cte"
	DeptROTC          Department = "rotc"
	DeptPhysEd        Department = "phys-ed"
	DeptSpecialEd     Department = "special-ed"
	DeptOther         Department = "other"
)

// DepartmentOf derives a department from an endorsement string, collapsing
// compound endorsements ("Science-Biology", "World-Language-Spanish") to
// their shared prefix.
func DepartmentOf(e Endorsement) Department {
	s := strings.ToLower(string(e))
	switch {
	case strings.HasPrefix(s, "social-science"):
		return DeptSocialScience
	case strings.HasPrefix(s, "world-language"):
		return DeptWorldLanguage
	case strings.HasPrefix(s, "science"):
		return DeptScience
	case strings.HasPrefix(s, "art"):
		return DeptArt
	}
	switch s {
	case "english":
		return DeptEnglish
	case "math":
		return DeptMath
	case "cte":
		return DeptCTE
	case "rotc":
		return DeptROTC
	case "phys-ed", "physed":
		return DeptPhysEd
	case "special-ed", "sped", "lbs1":
		return DeptSpecialEd
	default:
		return DeptOther
	}
}

// LBS1 is the special-education certification required of the primary
// teacher on any separate-class section.
const LBS1 Endorsement = "LBS1"
