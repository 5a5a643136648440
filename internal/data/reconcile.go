package data

import (
	"errors"
	"fmt"

	"github.com/moviehub/catalog/internal/biz"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// naturalKey describes how a catalog-wide entity is identified by content
// rather than by its generated id.
type naturalKey[M any] struct {
	// key renders the natural key; equal keys mean the same entity.
	key func(m *M) string
	// id addresses the primary key field so it can be rewritten.
	id func(m *M) *string
	// match scopes a query to rows sharing m's natural key.
	match func(db *gorm.DB, m *M) *gorm.DB
}

var genreKey = naturalKey[Genre]{
	key: func(g *Genre) string { return g.Name },
	id:  func(g *Genre) *string { return &g.ID },
	match: func(db *gorm.DB, g *Genre) *gorm.DB {
		return db.Where("name = ?", g.Name)
	},
}

var castKey = naturalKey[Cast]{
	key: func(c *Cast) string { return c.Name + "\x00" + c.Role },
	id:  func(c *Cast) *string { return &c.ID },
	match: func(db *gorm.DB, c *Cast) *gorm.DB {
		return db.Where("name = ? AND role = ?", c.Name, c.Role)
	},
}

// reconcile resolves every candidate to exactly one catalog row. Existing rows
// win over candidates, and within one call the first candidate seen for a key
// wins over later ones. Candidate ids are rewritten in place; the returned ids
// are unique and in first-seen order.
func reconcile[M any](db *gorm.DB, candidates []M, nk naturalKey[M]) ([]string, error) {
	seen := make(map[string]string, len(candidates))
	ids := make([]string, 0, len(candidates))

	for i := range candidates {
		c := &candidates[i]
		k := nk.key(c)
		if id, ok := seen[k]; ok {
			*nk.id(c) = id
			continue
		}

		id, err := lookupOrInsert(db, c, nk)
		if err != nil {
			return nil, err
		}
		*nk.id(c) = id
		seen[k] = id
		ids = append(ids, id)
	}
	return ids, nil
}

func lookupOrInsert[M any](db *gorm.DB, c *M, nk naturalKey[M]) (string, error) {
	var existing M
	err := nk.match(db, c).Take(&existing).Error
	if err == nil {
		return *nk.id(&existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to look up %q: %w", nk.key(c), err)
	}

	if *nk.id(c) == "" {
		*nk.id(c) = biz.NewID()
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(c)
	if res.Error != nil {
		return "", fmt.Errorf("failed to insert %q: %w", nk.key(c), res.Error)
	}
	if res.RowsAffected > 0 {
		return *nk.id(c), nil
	}

	// A concurrent ingestion inserted the same key first.
	var winner M
	if err := nk.match(db, c).Take(&winner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %q", biz.ErrReconciliationConflict, nk.key(c))
		}
		return "", fmt.Errorf("failed to re-read %q: %w", nk.key(c), err)
	}
	return *nk.id(&winner), nil
}

// reconcileGenres reconciles genre candidates by name and writes the winning
// ids back into genres.
func reconcileGenres(db *gorm.DB, genres []biz.Genre) ([]string, error) {
	models := make([]Genre, len(genres))
	for i, g := range genres {
		models[i] = Genre{ID: g.ID, Name: g.Name}
	}
	ids, err := reconcile(db, models, genreKey)
	if err != nil {
		return nil, err
	}
	for i := range genres {
		genres[i].ID = models[i].ID
	}
	return ids, nil
}

// reconcileCast reconciles cast candidates by name and role and writes the
// winning ids back into cast.
func reconcileCast(db *gorm.DB, cast []biz.Cast) ([]string, error) {
	models := make([]Cast, len(cast))
	for i, c := range cast {
		models[i] = Cast{ID: c.ID, Name: c.Name, Role: c.Role}
	}
	ids, err := reconcile(db, models, castKey)
	if err != nil {
		return nil, err
	}
	for i := range cast {
		cast[i].ID = models[i].ID
	}
	return ids, nil
}
