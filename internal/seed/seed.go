// Package seed loads the demo quest list.
package seed

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/quests/internal/model"
)

// Store is what Run needs from the quest store.
type Store interface {
	DeleteAll() (int64, error)
	Insert(q model.Quest) (*model.Quest, error)
	Count() (int, error)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Quests is the demo data, oldest first.
var Quests = []model.Quest{
	{Name: "First Day at TIPCO! Setup Macbooks and everything up!", Description: "setup friendslog, basecamp, Tipco'card, door auth and necessary things required at odds", Status: true, CreatedAt: day(2024, 1, 6)},
	{Name: "1st Finova's UX Field Research", Description: "Finova project need some information about transaction of some banks", Status: true, CreatedAt: day(2024, 1, 10)},
	{Name: "Friendslog Migration", Description: "Current Friendslog is running on Rails 7.x.x. P'Ruuf want us to migrate it to 8.x.x.", Status: false, CreatedAt: day(2024, 1, 14)},
	{Name: "2nd Finova's UX Field Research", Description: "Finova project need some information about transaction of some banks", Status: true, CreatedAt: day(2024, 1, 17)},
	{Name: "3rd Finova's UX Field Research", Description: "Finova project need some information about transaction of some banks", Status: true, CreatedAt: day(2024, 1, 24)},
	{Name: "Create Tipco's card template for printing", Description: "P'Jeans create canvas for card template, we merge it into one paper for printable size", Status: true, CreatedAt: day(2024, 2, 3)},
	{Name: "On Board people fron Sukhothai Thammathirat Open University that recently joinned", Description: "More people more fun!", Status: true, CreatedAt: day(2024, 2, 18)},
	{Name: "NVC Class", Description: "non-violence communication class with P'Mho Phi", Status: true, CreatedAt: day(2024, 3, 3)},
	{Name: "Scrum Class", Description: "Scrum & Agile methodology class with odts", Status: true, CreatedAt: day(2024, 3, 4)},
	{Name: "Ruby Class", Description: "First time learning Ruby languege", Status: true, CreatedAt: day(2024, 3, 10)},
	{Name: "Ruby On Rails Class", Description: "Start Ruby On Rails Project with P'Mac", Status: true, CreatedAt: day(2024, 3, 11)},
	{Name: "GIT Class", Description: "Start GIT 101 with P'Champ", Status: true, CreatedAt: day(2024, 3, 17)},
	{Name: "Agile Testing Class", Description: "Learning about Agile Testing, Methodology", Status: true, CreatedAt: day(2024, 3, 18)},
	{Name: "Playwright Testing", Description: "Use knowledge from Agile Testing class with Playwright in this class", Status: true, CreatedAt: day(2024, 3, 21)},
	{Name: "Container Fundamental", Description: "Container Technology 101", Status: true, CreatedAt: day(2024, 3, 24)},
	{Name: "Docker Class", Description: "Learning about Docker and how to use it", Status: true, CreatedAt: day(2024, 3, 25)},
	{Name: "CI on Gitlabs", Description: "Class about Gitlabs CI with P'Dear", Status: true, CreatedAt: day(2024, 3, 26)},
	{Name: "Jenkins Class", Description: "Learning about Jenkins and how to use it with P'J", Status: true, CreatedAt: day(2024, 3, 27)},
	{Name: "Figma Class", Description: "Learning about Figma 101 and how to use it", Status: true, CreatedAt: day(2024, 3, 31)},
	{Name: "BMA Project", Description: "Start working BMA Project", Status: false, CreatedAt: day(2024, 4, 1)},
}

// Run replaces every quest with the demo data and returns the new count.
func Run(s Store, logger *slog.Logger) (int, error) {
	removed, err := s.DeleteAll()
	if err != nil {
		return 0, fmt.Errorf("clear quests: %w", err)
	}
	logger.Info("cleared quests", "removed", removed)

	for _, q := range Quests {
		created, err := s.Insert(q)
		if err != nil {
			return 0, fmt.Errorf("seed %q: %w", q.Name, err)
		}
		logger.Debug("seeded quest", "quest_id", created.ID, "name", created.Name, "complete", created.Status)
	}

	n, err := s.Count()
	if err != nil {
		return 0, err
	}
	logger.Info("seed completed", "quests", n)
	return n, nil
}
