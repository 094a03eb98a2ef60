package soundboard

import (
	"sort"

	"github.com/Vasu1712/soundboard-backend/internal/models"
)

// SortRoster orders users by role priority, then by name.
func SortRoster(users []models.RosterUser) {
	sort.SliceStable(users, func(i, j int) bool {
		pi, pj := users[i].Role.Priority(), users[j].Role.Priority()
		if pi != pj {
			return pi < pj
		}
		return users[i].Name < users[j].Name
	})
}
