package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	apperrors "socialgraph/pkg/errors"
	"socialgraph/pkg/logger"
)

// PredicateKind is the value type of a declared predicate.
type PredicateKind string

const (
	KindString   PredicateKind = "string"
	KindInt      PredicateKind = "int"
	KindFloat    PredicateKind = "float"
	KindBool     PredicateKind = "bool"
	KindDateTime PredicateKind = "datetime"
	// KindRef marks an edge to another node type.
	KindRef PredicateKind = "ref"
)

// IndexKind selects the lookup index created for a predicate.
type IndexKind string

const (
	IndexNone     IndexKind = ""
	IndexExact    IndexKind = "exact"
	IndexFulltext IndexKind = "fulltext"
	IndexRange    IndexKind = "range"
)

// Predicate declares one attribute or edge of a node type.
type Predicate struct {
	Name   string
	Kind   PredicateKind
	Target string // target node type for KindRef
	List   bool   // many-valued
	Unique bool   // uniqueness constraint (scalar predicates only)
	Index  IndexKind
	// Reverse marks a ref predicate whose inverse traversal is part of the
	// model. The relation stays a single declared edge; traversal in the
	// opposite direction is served by the same edge, never by a second one.
	Reverse bool
}

// TypeDefinition declares a node type with its predicates.
type TypeDefinition struct {
	Name       string
	Predicates []Predicate
}

// Registry applies type definitions to the store and guards against
// incompatible redefinition. Forward references between types are fine: the
// model is cyclic and a ref target is only resolved at link time.
type Registry struct {
	store  *Store
	logger *zap.Logger

	mu      sync.Mutex
	applied map[string]TypeDefinition
}

// NewRegistry creates a schema registry bound to a store.
func NewRegistry(store *Store) *Registry {
	return &Registry{
		store:   store,
		logger:  logger.Get(),
		applied: make(map[string]TypeDefinition),
	}
}

// Apply registers a type definition and creates its constraints and indexes.
// Reapplying an identical definition is a no-op. A definition that declares
// an already-applied predicate with a different kind, target, index or
// reverse flag fails with a SchemaConflictError.
func (r *Registry) Apply(ctx context.Context, def TypeDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prior, ok := r.applied[def.Name]; ok {
		conflict, err := diffDefinitions(prior, def)
		if err != nil {
			return err
		}
		if !conflict {
			// Identical reapply. Constraint statements are IF NOT EXISTS,
			// so there is nothing to redo.
			return nil
		}
	}

	statements := schemaStatements(def)
	session := r.store.WriteSession(ctx)
	defer session.Close(ctx)

	for _, stmt := range statements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return apperrors.NewGraphQueryFailed(stmt, err)
		}
	}

	r.applied[def.Name] = def
	r.logger.Info("Schema applied",
		zap.String("type", def.Name),
		zap.Int("predicates", len(def.Predicates)),
		zap.Int("statements", len(statements)),
	)
	return nil
}

// ApplyAll applies every built-in type definition. Order across types is
// irrelevant.
func (r *Registry) ApplyAll(ctx context.Context) error {
	for _, def := range BuiltinDefinitions() {
		if err := r.Apply(ctx, def); err != nil {
			return err
		}
	}
	return nil
}

// Applied reports whether a type definition has been applied.
func (r *Registry) Applied(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.applied[name]
	return ok
}

// AppliedTypes returns the names of every applied type definition, sorted.
func (r *Registry) AppliedTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.applied))
	for name := range r.applied {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// diffDefinitions compares a new definition against the applied one.
// It returns an error for incompatible shared predicates and reports whether
// the new definition adds anything the prior one lacks.
func diffDefinitions(prior, next TypeDefinition) (changed bool, err error) {
	byName := make(map[string]Predicate, len(prior.Predicates))
	for _, p := range prior.Predicates {
		byName[p.Name] = p
	}
	for _, p := range next.Predicates {
		old, ok := byName[p.Name]
		if !ok {
			changed = true
			continue
		}
		if old != p {
			return false, apperrors.NewSchemaConflict(next.Name, p.Name,
				fmt.Sprintf("declared as %s, previously %s", describePredicate(p), describePredicate(old)))
		}
	}
	if len(next.Predicates) != len(prior.Predicates) {
		changed = true
	}
	return changed, nil
}

func describePredicate(p Predicate) string {
	parts := []string{string(p.Kind)}
	if p.Kind == KindRef {
		parts = append(parts, "->"+p.Target)
		if p.Reverse {
			parts = append(parts, "reverse")
		}
	}
	if p.List {
		parts = append(parts, "list")
	}
	if p.Unique {
		parts = append(parts, "unique")
	}
	if p.Index != IndexNone {
		parts = append(parts, "index:"+string(p.Index))
	}
	return strings.Join(parts, " ")
}

// schemaStatements renders the idempotent DDL for a type definition.
// Ref predicates produce no DDL: a relationship needs no declaration in the
// store, and reverse traversal is served by the stored edge itself.
func schemaStatements(def TypeDefinition) []string {
	label := def.Name
	prefix := strings.ToLower(label)
	var stmts []string
	for _, p := range def.Predicates {
		if p.Kind == KindRef {
			continue
		}
		if p.Unique {
			stmts = append(stmts, fmt.Sprintf(
				"CREATE CONSTRAINT %s_%s_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
				prefix, p.Name, label, p.Name))
			continue
		}
		switch p.Index {
		case IndexExact, IndexRange:
			stmts = append(stmts, fmt.Sprintf(
				"CREATE INDEX %s_%s_idx IF NOT EXISTS FOR (n:%s) ON (n.%s)",
				prefix, p.Name, label, p.Name))
		case IndexFulltext:
			stmts = append(stmts, fmt.Sprintf(
				"CREATE FULLTEXT INDEX %s_%s_fulltext IF NOT EXISTS FOR (n:%s) ON EACH [n.%s]",
				prefix, p.Name, label, p.Name))
		}
	}
	return stmts
}
