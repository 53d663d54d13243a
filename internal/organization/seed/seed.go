// Package seed loads the sales hierarchy, users and product catalog from a
// YAML file and upserts them by natural key.
package seed

import (
	"context"
	"fmt"
	"io"

	"salesrep_portal/internal/organization/repository"
	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/validator"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type File struct {
	Groups   []Group   `yaml:"groups" validate:"dive"`
	Users    []User    `yaml:"users" validate:"dive"`
	Products []Product `yaml:"products" validate:"dive"`
}

type Group struct {
	Name string   `yaml:"name" validate:"required,max=200"`
	Orgs []string `yaml:"orgs" validate:"dive,required,max=200"`
}

type User struct {
	Email    string `yaml:"email" validate:"required,email"`
	FullName string `yaml:"fullName" validate:"required,max=200"`
	Role     string `yaml:"role" validate:"required,role"`
	Group    string `yaml:"group"`
	Org      string `yaml:"org"`
	Inactive bool   `yaml:"inactive"`
}

type Product struct {
	Name     string `yaml:"name" validate:"required,max=200"`
	Inactive bool   `yaml:"inactive"`
}

// RegisterRoleValidation adds the "role" rule accepting the four portal roles.
func RegisterRoleValidation(val *validator.Validator) error {
	return val.RegisterValidation("role", func(fl govalidator.FieldLevel) bool {
		return scoping.Role(fl.Field().String()).Valid()
	})
}

// Parse decodes and validates a seed file. Users must reference groups and
// orgs declared in the same file, and an org requires its group.
func Parse(r io.Reader, val *validator.Validator) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("decode seed file: %w", err)
	}
	if err := val.Struct(f); err != nil {
		return File{}, fmt.Errorf("invalid seed file: %w", err)
	}

	orgs := make(map[string]map[string]bool, len(f.Groups))
	for _, g := range f.Groups {
		orgs[g.Name] = make(map[string]bool, len(g.Orgs))
		for _, o := range g.Orgs {
			orgs[g.Name][o] = true
		}
	}
	for _, u := range f.Users {
		if u.Group == "" {
			if u.Org != "" {
				return File{}, fmt.Errorf("user %s: org %q requires a group", u.Email, u.Org)
			}
			continue
		}
		groupOrgs, ok := orgs[u.Group]
		if !ok {
			return File{}, fmt.Errorf("user %s: unknown group %q", u.Email, u.Group)
		}
		if u.Org != "" && !groupOrgs[u.Org] {
			return File{}, fmt.Errorf("user %s: org %q is not part of group %q", u.Email, u.Org, u.Group)
		}
	}
	return f, nil
}

// Store is the write side used by Apply.
type Store interface {
	UpsertSalesGroup(ctx context.Context, name string) (uuid.UUID, error)
	UpsertSalesOrg(ctx context.Context, groupID uuid.UUID, name string) (uuid.UUID, error)
	UpsertUser(ctx context.Context, u repository.User) (uuid.UUID, error)
	UpsertProduct(ctx context.Context, name string, active bool) (uuid.UUID, error)
}

type Summary struct {
	Groups   int
	Orgs     int
	Users    int
	Products int
}

// Apply writes f through store. Callers run it inside a transaction so a
// failing record leaves nothing behind.
func Apply(ctx context.Context, store Store, f File) (Summary, error) {
	var sum Summary
	groupIDs := make(map[string]uuid.UUID, len(f.Groups))
	orgIDs := make(map[string]uuid.UUID)

	for _, g := range f.Groups {
		gid, err := store.UpsertSalesGroup(ctx, g.Name)
		if err != nil {
			return Summary{}, err
		}
		groupIDs[g.Name] = gid
		sum.Groups++
		for _, o := range g.Orgs {
			oid, err := store.UpsertSalesOrg(ctx, gid, o)
			if err != nil {
				return Summary{}, err
			}
			orgIDs[g.Name+"/"+o] = oid
			sum.Orgs++
		}
	}

	for _, u := range f.Users {
		rec := repository.User{Email: u.Email, FullName: u.FullName, Role: scoping.Role(u.Role), IsActive: !u.Inactive}
		if u.Group != "" {
			gid := groupIDs[u.Group]
			rec.SalesGroupID = &gid
		}
		if u.Org != "" {
			oid := orgIDs[u.Group+"/"+u.Org]
			rec.SalesOrgID = &oid
		}
		if _, err := store.UpsertUser(ctx, rec); err != nil {
			return Summary{}, err
		}
		sum.Users++
	}

	for _, p := range f.Products {
		if _, err := store.UpsertProduct(ctx, p.Name, !p.Inactive); err != nil {
			return Summary{}, err
		}
		sum.Products++
	}
	return sum, nil
}
