// Package seed loads the reference data (roles and the product taxonomy)
// from YAML into the database.  Applying the same file twice changes
// nothing.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"io"
	"strings"

	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/repository"
)

//go:embed default.yaml
var defaultYAML []byte

// Named is an entry with a name and an optional description.
type Named struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type Role struct {
	Named       `yaml:",inline"`
	Permissions []string `yaml:"permissions"`
}

type Category struct {
	Named     `yaml:",inline"`
	Amenities []Named `yaml:"amenities"`
}

type Type struct {
	Named      `yaml:",inline"`
	Categories []Category `yaml:"categories"`
}

// File is the seed document.
type File struct {
	Roles     []Role  `yaml:"roles"`
	Types     []Type  `yaml:"types"`
	Audiences []Named `yaml:"audiences"`
}

// Parse decodes a seed document.  Unknown keys are rejected.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, errors.Wrap(err, "seed: decode")
	}
	return f, nil
}

// Default returns the built-in seed document.
func Default() (File, error) { return Parse(bytes.NewReader(defaultYAML)) }

// RoleStore is implemented by *repository.RoleRepo.
type RoleStore interface {
	Upsert(ctx context.Context, ro model.Role) error
}

// TaxonomyStore is implemented by *repository.TaxonomyRepo.
type TaxonomyStore interface {
	GetTypeByName(ctx context.Context, name string) (model.ProductType, error)
	CreateType(ctx context.Context, t *model.ProductType) error
	ListCategories(ctx context.Context, typeID string) ([]model.ProductCategory, error)
	CreateCategory(ctx context.Context, c *model.ProductCategory) error
	ListAudiences(ctx context.Context) ([]model.TargetAudience, error)
	CreateAudience(ctx context.Context, a *model.TargetAudience) error
}

// AmenityStore is implemented by *repository.AmenityRepo.
type AmenityStore interface {
	List(ctx context.Context, categoryID string) ([]model.Amenity, error)
	Create(ctx context.Context, a *model.Amenity) error
}

// Seeder writes a File through the stores.
type Seeder struct {
	Roles     RoleStore
	Taxonomy  TaxonomyStore
	Amenities AmenityStore
}

// Stats counts the rows a run created.  Roles are upserted and counted
// whether or not they existed.
type Stats struct {
	Roles, Types, Categories, Amenities, Audiences int
}

// Apply writes f.  Existing entries are matched by name
// (case-insensitive) and left alone.
func (s *Seeder) Apply(ctx context.Context, f File) (Stats, error) {
	var st Stats
	for _, r := range f.Roles {
		name := strings.ToLower(strings.TrimSpace(r.Name))
		if name == "" {
			continue
		}
		err := s.Roles.Upsert(ctx, model.Role{Name: name, Description: r.Description, Permissions: r.Permissions})
		if err != nil {
			return st, errors.Wrapf(err, "seed: role %s", name)
		}
		st.Roles++
	}

	for _, t := range f.Types {
		typ, created, err := s.ensureType(ctx, t.Named)
		if err != nil {
			return st, err
		}
		if created {
			st.Types++
		}
		existing, err := s.Taxonomy.ListCategories(ctx, typ.ID)
		if err != nil {
			return st, errors.Wrapf(err, "seed: categories of %s", typ.Name)
		}
		for _, c := range t.Categories {
			cat, ok := findCategory(existing, c.Name)
			if !ok {
				cat = model.ProductCategory{Name: strings.TrimSpace(c.Name), Description: c.Description, ProductTypeID: typ.ID}
				if err := s.Taxonomy.CreateCategory(ctx, &cat); err != nil {
					return st, errors.Wrapf(err, "seed: category %s", c.Name)
				}
				st.Categories++
			}
			n, err := s.ensureAmenities(ctx, cat.ID, c.Amenities)
			st.Amenities += n
			if err != nil {
				return st, err
			}
		}
	}

	audiences, err := s.Taxonomy.ListAudiences(ctx)
	if err != nil {
		return st, errors.Wrap(err, "seed: audiences")
	}
	for _, a := range f.Audiences {
		if containsName(len(audiences), func(i int) string { return audiences[i].Name }, a.Name) {
			continue
		}
		row := model.TargetAudience{Name: strings.TrimSpace(a.Name), Description: a.Description}
		if err := s.Taxonomy.CreateAudience(ctx, &row); err != nil {
			return st, errors.Wrapf(err, "seed: audience %s", a.Name)
		}
		audiences = append(audiences, row)
		st.Audiences++
	}

	zlog.Ctx(ctx).Info().Int("roles", st.Roles).Int("types", st.Types).Int("categories", st.Categories).
		Int("amenities", st.Amenities).Int("audiences", st.Audiences).Msg("seed applied")
	return st, nil
}

func (s *Seeder) ensureType(ctx context.Context, n Named) (model.ProductType, bool, error) {
	name := strings.ToLower(strings.TrimSpace(n.Name))
	t, err := s.Taxonomy.GetTypeByName(ctx, name)
	if err == nil {
		return t, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return t, false, errors.Wrapf(err, "seed: type %s", name)
	}
	t = model.ProductType{Name: name, Description: n.Description}
	if err := s.Taxonomy.CreateType(ctx, &t); err != nil {
		return t, false, errors.Wrapf(err, "seed: type %s", name)
	}
	return t, true, nil
}

func (s *Seeder) ensureAmenities(ctx context.Context, categoryID string, want []Named) (int, error) {
	if len(want) == 0 {
		return 0, nil
	}
	have, err := s.Amenities.List(ctx, categoryID)
	if err != nil {
		return 0, errors.Wrap(err, "seed: amenities")
	}
	created := 0
	for _, a := range want {
		if containsName(len(have), func(i int) string { return have[i].Name }, a.Name) {
			continue
		}
		row := model.Amenity{Name: strings.TrimSpace(a.Name), Description: a.Description, ProductCategoryID: categoryID}
		if err := s.Amenities.Create(ctx, &row); err != nil {
			return created, errors.Wrapf(err, "seed: amenity %s", a.Name)
		}
		have = append(have, row)
		created++
	}
	return created, nil
}

func findCategory(cs []model.ProductCategory, name string) (model.ProductCategory, bool) {
	for _, c := range cs {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, true
		}
	}
	return model.ProductCategory{}, false
}

func containsName(n int, at func(int) string, name string) bool {
	for i := 0; i < n; i++ {
		if strings.EqualFold(at(i), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}
