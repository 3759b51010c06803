package loyalty

// Category names an outbound message family. The values double as the
// message_templates trigger keys stored in the database.
type Category string

const (
	CategoryWelcome    Category = "bienvenue"
	CategoryBirthday   Category = "anniversaire"
	CategoryVIP        Category = "vip"
	CategoryReturning  Category = "doublon"
	CategoryReminder   Category = "rappel"
	CategoryInvitation Category = "invitation"
	CategoryThanks     Category = "remerciement"
)

// Profile is the read model the category routing needs. Callers copy the
// relevant client columns into it; the engine never touches live rows.
type Profile struct {
	IsVIP      bool
	IsDup      bool
	Score      int
	TotalStays int
}

const vipScoreFloor = 80

// SelectCategory picks the outbound message category for a client,
// first-match priority. The explicit welcome and birthday triggers win over
// everything; client standing beats the remaining trigger hints.
func SelectCategory(p Profile, trigger string) Category {
	switch trigger {
	case "bienvenue":
		return CategoryWelcome
	case "anniversaire":
		return CategoryBirthday
	}

	if p.IsVIP || p.Score >= vipScoreFloor {
		return CategoryVIP
	}
	if p.IsDup || p.TotalStays > 1 {
		return CategoryReturning
	}

	switch trigger {
	case "inactif", "rappel":
		return CategoryReminder
	case "invitation":
		return CategoryInvitation
	}
	return CategoryThanks
}
