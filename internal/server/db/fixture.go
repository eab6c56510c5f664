package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/glosshub/glosshub/internal/log"
	"github.com/glosshub/glosshub/internal/models"
)

// Fixture is the YAML shape accepted by LoadFixture.
type Fixture struct {
	Users       []FixtureUser       `yaml:"users"`
	Groups      []FixtureGroup      `yaml:"groups"`
	AuthClients []FixtureAuthClient `yaml:"auth_clients"`
	Annotations []FixtureAnnotation `yaml:"annotations"`
}

type FixtureUser struct {
	UserID      string   `yaml:"userid"`
	Username    string   `yaml:"username"`
	Authority   string   `yaml:"authority"`
	DisplayName string   `yaml:"display_name"`
	Admin       bool     `yaml:"admin"`
	Staff       bool     `yaml:"staff"`
	Groups      []string `yaml:"groups"`
}

type FixtureGroup struct {
	Pubid     string `yaml:"pubid"`
	Name      string `yaml:"name"`
	Authority string `yaml:"authority"`
	Creator   string `yaml:"creator"`
}

type FixtureAuthClient struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Authority string `yaml:"authority"`
	Secret    string `yaml:"secret"`
	GrantType string `yaml:"grant_type"`
}

type FixtureAnnotation struct {
	ID     string   `yaml:"id"`
	UserID string   `yaml:"userid"`
	Group  string   `yaml:"group"`
	URI    string   `yaml:"uri"`
	Title  string   `yaml:"title"`
	Text   string   `yaml:"text"`
	Tags   []string `yaml:"tags"`
	Shared bool     `yaml:"shared"`
	Hidden bool     `yaml:"hidden"`
}

// LoadFixture seeds the store from a YAML fixture file. Annotations
// without an id get a generated one.
func (s *MemoryStore) LoadFixture(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fixture %s: %w", path, err)
	}

	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}

	groupsByPubid := make(map[string]*models.Group, len(fixture.Groups))

	for _, g := range fixture.Groups {
		group := &models.Group{
			Pubid:         g.Pubid,
			Name:          g.Name,
			Authority:     g.Authority,
			CreatorUserID: g.Creator,
		}
		groupsByPubid[g.Pubid] = group
		s.AddGroup(group)
	}

	for _, u := range fixture.Users {
		user := &models.User{
			UserID:      u.UserID,
			Username:    u.Username,
			Authority:   u.Authority,
			DisplayName: u.DisplayName,
			Admin:       u.Admin,
			Staff:       u.Staff,
		}

		for _, pubid := range u.Groups {
			if group, ok := groupsByPubid[pubid]; ok {
				user.Groups = append(user.Groups, *group)
			}
		}

		s.AddUser(user)
	}

	for _, c := range fixture.AuthClients {
		s.AddAuthClient(&models.AuthClient{
			ID:        c.ID,
			Name:      c.Name,
			Authority: c.Authority,
			Secret:    c.Secret,
			GrantType: models.GrantType(c.GrantType),
		})
	}

	now := time.Now()

	for _, a := range fixture.Annotations {
		id := a.ID
		if id == "" {
			id = uuid.NewString()
		}

		annotation := &models.Annotation{
			ID:         id,
			UserID:     a.UserID,
			GroupPubid: a.Group,
			Text:       a.Text,
			Tags:       a.Tags,
			TargetURI:  a.URI,
			Shared:     a.Shared,
			Created:    now,
			Updated:    now,
		}

		if a.Title != "" {
			annotation.Document = &models.Document{Title: a.Title, URI: a.URI}
		}

		s.AddAnnotation(annotation)

		if a.Hidden {
			if err := s.SetHidden(ctx, id, true); err != nil {
				return err
			}
		}
	}

	log.Info(ctx, "fixture loaded",
		log.String("path", path),
		log.Int("users", len(fixture.Users)),
		log.Int("groups", len(fixture.Groups)),
		log.Int("annotations", len(fixture.Annotations)),
	)

	return nil
}
