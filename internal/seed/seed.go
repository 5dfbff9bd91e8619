// Package seed holds the static fallback content used when no snapshot
// has been persisted yet.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/ByteBlast1/KanFlow/internal/domain"
)

var (
	//go:embed boards.yaml
	boardsYAML []byte
	//go:embed dashboard.yaml
	dashboardYAML []byte
	//go:embed users.yaml
	usersYAML []byte
)

type task struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Priority    string `yaml:"priority"`
	DueDate     string `yaml:"due_date"`
	Assignee    string `yaml:"assignee"`
}

type column struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Tasks []task `yaml:"tasks"`
}

type board struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Columns     []column `yaml:"columns"`
}

type summary struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	UpdatedAt   string `yaml:"updated_at"`
	TasksCount  int    `yaml:"tasks_count"`
	Status      string `yaml:"status"`
	Priority    string `yaml:"priority"`
}

// User is a seed account. The password is plain text and gets hashed by
// the auth service when it is registered.
type User struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Data is the parsed seed content.
type Data struct {
	boards    map[string]domain.Board
	dashboard []domain.BoardSummary
	users     []User
}

// MustLoad parses the embedded seed files and panics if they are invalid.
func MustLoad() *Data {
	d, err := Parse(boardsYAML, dashboardYAML, usersYAML)
	if err != nil {
		panic(err)
	}
	return d
}

func Parse(boardsRaw, dashboardRaw, usersRaw []byte) (*Data, error) {
	var boards []board
	if err := yaml.Unmarshal(boardsRaw, &boards); err != nil {
		return nil, fmt.Errorf("parse seed boards: %w", err)
	}
	var summaries []summary
	if err := yaml.Unmarshal(dashboardRaw, &summaries); err != nil {
		return nil, fmt.Errorf("parse seed dashboard: %w", err)
	}
	var users []User
	if err := yaml.Unmarshal(usersRaw, &users); err != nil {
		return nil, fmt.Errorf("parse seed users: %w", err)
	}

	d := &Data{boards: make(map[string]domain.Board, len(boards)), users: users}
	for _, b := range boards {
		d.boards[b.ID] = b.toDomain()
	}
	for _, s := range summaries {
		ds, err := s.toDomain()
		if err != nil {
			return nil, err
		}
		d.dashboard = append(d.dashboard, ds)
	}
	return d, nil
}

// Board returns a copy of the seed board for id.
func (d *Data) Board(id string) (domain.Board, bool) {
	b, ok := d.boards[id]
	if !ok {
		return domain.Board{}, false
	}
	return b.Clone(), true
}

func (d *Data) Dashboard() []domain.BoardSummary {
	return domain.CloneSummaries(d.dashboard)
}

func (d *Data) Users() []User {
	out := make([]User, len(d.users))
	copy(out, d.users)
	return out
}

func (b board) toDomain() domain.Board {
	out := domain.Board{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Columns:     make([]domain.Column, 0, len(b.Columns)),
	}
	for _, c := range b.Columns {
		col := domain.Column{ID: c.ID, Title: c.Title, Tasks: make([]domain.Task, 0, len(c.Tasks))}
		for _, t := range c.Tasks {
			dt := domain.Task{
				ID:          t.ID,
				Title:       t.Title,
				Description: t.Description,
				Priority:    domain.Priority(t.Priority),
				DueDate:     domain.ParseDate(&t.DueDate),
			}
			if t.Assignee != "" {
				a := t.Assignee
				dt.Assignee = &a
			}
			col.Tasks = append(col.Tasks, dt)
		}
		out.Columns = append(out.Columns, col)
	}
	return out
}

func (s summary) toDomain() (domain.BoardSummary, error) {
	updated := domain.ParseDate(&s.UpdatedAt)
	if updated == nil {
		return domain.BoardSummary{}, fmt.Errorf("seed board %s: invalid updated_at %q", s.ID, s.UpdatedAt)
	}
	return domain.BoardSummary{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		UpdatedAt:   *updated,
		TasksCount:  s.TasksCount,
		Status:      s.Status,
		Priority:    domain.SummaryPriority(s.Priority),
	}, nil
}
