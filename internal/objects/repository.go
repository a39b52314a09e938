package objects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/depotkit/depot/internal/classification"
	"github.com/depotkit/depot/internal/content"
	"github.com/depotkit/depot/internal/events"
	"github.com/depotkit/depot/internal/index"
	"github.com/depotkit/depot/internal/linktable"
	"github.com/depotkit/depot/internal/models"
	"github.com/depotkit/depot/internal/structure"
	"github.com/depotkit/depot/internal/xmltable"
)

// maxAncestorDepth bounds the ancestor walk. Correctly maintained single-
// parent trees cannot cycle, but the walk still refuses to run away.
const maxAncestorDepth = 128

// Repository drives the entity lifecycle across the three stores. Within
// one lifecycle call the stores are written in a fixed order — index
// projection, then document store, then link table — so a reader who
// observes the document store current may assume the projection is too.
//
// Inherited metadata propagates to descendants only through UpdateObject;
// structural mutations on their own never re-propagate.
type Repository struct {
	docs     *xmltable.XMLTable
	links    *linktable.LinkTable
	index    index.Store
	classes  classification.Resolver
	content  content.Store
	access   AccessPolicy
	bus      *events.Bus
	linkSync *events.LinkSynchronizer
	logger   *slog.Logger
}

// NewRepository wires the lifecycle engine. The access policy defaults to
// AllowAll and can be replaced with SetAccessPolicy.
func NewRepository(
	docs *xmltable.XMLTable,
	links *linktable.LinkTable,
	idx index.Store,
	classes classification.Resolver,
	cont content.Store,
	logger *slog.Logger,
) *Repository {
	return &Repository{
		docs:     docs,
		links:    links,
		index:    idx,
		classes:  classes,
		content:  cont,
		access:   AllowAll{},
		bus:      events.NewBus(logger),
		linkSync: events.NewLinkSynchronizer(links),
		logger:   logger,
	}
}

// SetAccessPolicy replaces the access policy consulted before mutations.
func (r *Repository) SetAccessPolicy(p AccessPolicy) {
	r.access = p
}

// Bus returns the event bus observers subscribe to. Lifecycle events are
// dispatched after the stores have been written.
func (r *Repository) Bus() *events.Bus {
	return r.bus
}

// AllocateID returns the next free id for the project and type.
func (r *Repository) AllocateID(ctx context.Context, project, typeID string) (models.ObjectID, error) {
	return r.docs.NextFreeID(ctx, project, typeID)
}

// Exists reports whether an entity with the id is stored.
func (r *Repository) Exists(ctx context.Context, id models.ObjectID) (bool, error) {
	return r.docs.Exists(ctx, id)
}

// ListIDs returns every stored id of one type.
func (r *Repository) ListIDs(ctx context.Context, typeID string) ([]models.ObjectID, error) {
	return r.docs.ListIDs(ctx, typeID)
}

// GetObject loads and validates an object.
func (r *Repository) GetObject(ctx context.Context, id models.ObjectID) (*Object, error) {
	if err := r.access.Allowed(ctx, OpRead, id); err != nil {
		return nil, err
	}
	doc, err := r.docs.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}
	return ObjectFromDocument(doc)
}

// GetDerivate loads and validates a derivate.
func (r *Repository) GetDerivate(ctx context.Context, id models.ObjectID) (*Derivate, error) {
	if err := r.access.Allowed(ctx, OpRead, id); err != nil {
		return nil, err
	}
	doc, err := r.docs.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}
	return DerivateFromDocument(doc)
}

// CreateObject persists a transient object. When a parent is declared, its
// heritable metadata is merged in as inherited values before serialization
// and the child link is appended to the parent; a failure while attaching
// rolls the child's own writes back with compensating deletes.
func (r *Repository) CreateObject(ctx context.Context, o *Object) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := r.access.Allowed(ctx, OpCreate, o.ID); err != nil {
		return err
	}
	exists, err := r.docs.Exists(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("checking %s: %w", o.ID, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", xmltable.ErrExists, o.ID)
	}
	if err := r.refreshInherited(ctx, o); err != nil {
		return err
	}
	now := time.Now().UTC()
	if o.Service.CreatedAt.IsZero() {
		o.Service.CreatedAt = now
	}
	o.Service.ModifiedAt = now

	doc := o.Document()
	if err := r.verifyDestinations(ctx, doc); err != nil {
		return err
	}
	comps, err := r.persistNew(ctx, doc)
	if err != nil {
		return err
	}
	if parent := o.Structure.Parent(); parent != nil {
		if err := r.attachChild(ctx, parent.To, models.LinkRef{To: o.ID, Label: o.Label}); err != nil {
			r.rollback(ctx, comps)
			return fmt.Errorf("attaching %s to parent %s: %w", o.ID, parent.To, err)
		}
	}
	r.bus.Dispatch(ctx, events.Event{Type: events.Created, Doc: doc})
	r.logger.Info("object created", "id", o.ID)
	return nil
}

// UpdateObject re-persists an object. The stored structure is carried
// forward unconditionally (structure is not editable through update),
// createdate is preserved, inherited metadata is re-collected from the
// current parent, and every descendant is re-persisted so inheritance
// propagates downward. Updating an absent id degrades to create.
func (r *Repository) UpdateObject(ctx context.Context, o *Object) error {
	if err := r.access.Allowed(ctx, OpUpdate, o.ID); err != nil {
		return err
	}
	old, err := r.docs.Retrieve(ctx, o.ID)
	if errors.Is(err, models.ErrNotFound) {
		return r.CreateObject(ctx, o)
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", o.ID, err)
	}
	o.Structure = structure.FromData(old.Structure)
	o.Service.CreatedAt = old.Service.CreatedAt
	o.Service.ModifiedAt = time.Now().UTC()
	if err := o.Validate(); err != nil {
		return err
	}
	if err := r.refreshInherited(ctx, o); err != nil {
		return err
	}
	doc := o.Document()
	if err := r.verifyDestinations(ctx, doc); err != nil {
		return err
	}
	if err := r.persistExisting(ctx, doc); err != nil {
		return err
	}
	err = r.propagate(ctx, doc)
	r.bus.Dispatch(ctx, events.Event{Type: events.Updated, Doc: doc})
	r.logger.Info("object updated", "id", o.ID)
	return err
}

// DeleteObject removes an object and cascades over its descendants and
// their derivates. Incoming references from outside the deletion set block
// the delete with an ActiveLinkError; once past that gate the cascade is
// best-effort and per-node failures do not abort sibling cleanup.
func (r *Repository) DeleteObject(ctx context.Context, id models.ObjectID) error {
	if err := r.access.Allowed(ctx, OpDelete, id); err != nil {
		return err
	}
	if id.IsDerivate() {
		return fmt.Errorf("%s is a derivate id", id)
	}
	root, err := r.docs.Retrieve(ctx, id)
	if err != nil {
		return fmt.Errorf("loading %s: %w", id, err)
	}

	order, inSet := r.collectSubtree(ctx, root)
	if err := r.checkActiveLinks(ctx, order, inSet); err != nil {
		return err
	}

	// Children before parents.
	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		doc := order[i]
		for _, dlink := range doc.Structure.Derivates {
			if err := r.removeDerivate(ctx, dlink.To, inSet); err != nil {
				errs = append(errs, err)
				r.logger.Error("cascade derivate delete failed", "id", dlink.To, "error", err)
			}
		}
		if err := r.removeEntity(ctx, doc); err != nil {
			errs = append(errs, err)
			r.logger.Error("cascade delete failed", "id", doc.ID, "error", err)
		}
		r.bus.Dispatch(ctx, events.Event{Type: events.Deleted, Doc: doc})
	}

	if parent := root.Structure.Parent; parent != nil {
		if err := r.detachChild(ctx, parent.To, id); err != nil {
			errs = append(errs, err)
			r.logger.Error("detaching from parent failed", "id", id, "parent", parent.To, "error", err)
		}
	}
	r.logger.Info("object deleted", "id", id, "cascaded", len(order)-1)
	return errors.Join(errs...)
}

// CreateDerivate persists a transient derivate. A source path is ingested
// into the content store first; the derivate link is then appended to every
// owner, and any failure rolls the derivate's own writes back.
func (r *Repository) CreateDerivate(ctx context.Context, d *Derivate) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := r.access.Allowed(ctx, OpCreate, d.ID); err != nil {
		return err
	}
	exists, err := r.docs.Exists(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("checking %s: %w", d.ID, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", xmltable.ErrExists, d.ID)
	}
	if d.ContentID == "" && d.SourcePath != "" {
		contentID, err := r.content.Store(ctx, d.SourcePath)
		if err != nil {
			return fmt.Errorf("storing payload of %s: %w", d.ID, err)
		}
		d.ContentID = contentID
	}
	now := time.Now().UTC()
	if d.Service.CreatedAt.IsZero() {
		d.Service.CreatedAt = now
	}
	d.Service.ModifiedAt = now

	doc := d.Document()
	if err := r.verifyDestinations(ctx, doc); err != nil {
		return err
	}
	comps, err := r.persistNew(ctx, doc)
	if err != nil {
		return err
	}
	var attached []models.ObjectID
	for _, owner := range d.Owners {
		if err := r.attachDerivate(ctx, owner.To, models.LinkRef{To: d.ID, Label: d.Label}); err != nil {
			for _, prev := range attached {
				if derr := r.detachDerivate(ctx, prev, d.ID); derr != nil {
					r.logger.Error("detaching derivate during rollback failed", "owner", prev, "error", derr)
				}
			}
			r.rollback(ctx, comps)
			return fmt.Errorf("attaching %s to owner %s: %w", d.ID, owner.To, err)
		}
		attached = append(attached, owner.To)
	}
	r.bus.Dispatch(ctx, events.Event{Type: events.Created, Doc: doc})
	r.logger.Info("derivate created", "id", d.ID, "content_id", d.ContentID)
	return nil
}

// UpdateDerivate re-persists a derivate. Owners and content id are carried
// forward from the stored record; createdate is preserved. Updating an
// absent id degrades to create.
func (r *Repository) UpdateDerivate(ctx context.Context, d *Derivate) error {
	if err := r.access.Allowed(ctx, OpUpdate, d.ID); err != nil {
		return err
	}
	old, err := r.docs.Retrieve(ctx, d.ID)
	if errors.Is(err, models.ErrNotFound) {
		return r.CreateDerivate(ctx, d)
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", d.ID, err)
	}
	if old.Derivate == nil {
		return fmt.Errorf("document %s is not a derivate", d.ID)
	}
	d.Owners = append([]models.LinkRef(nil), old.Derivate.Owners...)
	d.ContentID = old.Derivate.ContentID
	d.Service.CreatedAt = old.Service.CreatedAt
	d.Service.ModifiedAt = time.Now().UTC()
	if err := d.Validate(); err != nil {
		return err
	}
	doc := d.Document()
	if err := r.verifyDestinations(ctx, doc); err != nil {
		return err
	}
	if err := r.persistExisting(ctx, doc); err != nil {
		return err
	}
	r.bus.Dispatch(ctx, events.Event{Type: events.Updated, Doc: doc})
	r.logger.Info("derivate updated", "id", d.ID)
	return nil
}

// DeleteDerivate removes a derivate, its stored payload, and the derivate
// link on every owner. Incoming references block the delete.
func (r *Repository) DeleteDerivate(ctx context.Context, id models.ObjectID) error {
	if err := r.access.Allowed(ctx, OpDelete, id); err != nil {
		return err
	}
	if !id.IsDerivate() {
		return fmt.Errorf("%s is not a derivate id", id)
	}
	report := NewActiveLinkError()
	sources, err := r.links.SourcesTo(ctx, models.EdgeReference, id.String())
	if err != nil {
		return fmt.Errorf("checking incoming links of %s: %w", id, err)
	}
	for _, src := range sources {
		report.Add(id.String(), src)
	}
	if err := report.OrNil(); err != nil {
		return err
	}
	if err := r.removeDerivate(ctx, id, nil); err != nil {
		return err
	}
	r.logger.Info("derivate deleted", "id", id)
	return nil
}

// Repair recomputes the stored projections of one id as if it were newly
// created. Broken link destinations are logged, not fatal, so audits can
// run over historically dirty data.
func (r *Repository) Repair(ctx context.Context, id models.ObjectID) error {
	doc, err := r.docs.Retrieve(ctx, id)
	if err != nil {
		return fmt.Errorf("loading %s: %w", id, err)
	}
	if err := r.verifyDestinations(ctx, doc); err != nil {
		r.logger.Warn("repair found broken links", "id", id, "error", err)
	}
	if err := r.persistExisting(ctx, doc); err != nil {
		return err
	}
	r.bus.Dispatch(ctx, events.Event{Type: events.Repaired, Doc: doc})
	return nil
}

// refreshInherited recomputes the inherited metadata block from the
// current parent chain. Without a parent the block is simply cleared.
func (r *Repository) refreshInherited(ctx context.Context, o *Object) error {
	o.Metadata.StripInherited()
	parent := o.Structure.Parent()
	if parent == nil {
		o.Structure.SetInherited(nil)
		return nil
	}
	inherited, err := r.collectInherited(ctx, parent.To)
	if err != nil {
		return fmt.Errorf("collecting inherited metadata for %s: %w", o.ID, err)
	}
	o.Structure.SetInherited(inherited)
	o.Metadata.AddInherited(inherited)
	return nil
}

// collectInherited walks parent -> parent -> ... to the root, concatenating
// each ancestor's heritable metadata in ancestor-to-root order. The walk is
// cycle-safe and depth-bounded.
func (r *Repository) collectInherited(ctx context.Context, parentID models.ObjectID) ([]models.MetaElement, error) {
	var out []models.MetaElement
	seen := make(map[models.ObjectID]struct{})
	current := parentID
	for depth := 0; ; depth++ {
		if depth >= maxAncestorDepth {
			return nil, fmt.Errorf("ancestor chain of %s exceeds %d levels", parentID, maxAncestorDepth)
		}
		if _, cycle := seen[current]; cycle {
			return nil, fmt.Errorf("ancestor cycle detected at %s", current)
		}
		seen[current] = struct{}{}
		doc, err := r.docs.Retrieve(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("loading ancestor %s: %w", current, err)
		}
		out = append(out, doc.Metadata.Heritable()...)
		if doc.Structure.Parent == nil {
			return out, nil
		}
		current = doc.Structure.Parent.To
	}
}

// verifyDestinations checks every reference and classification destination
// of the document and accumulates the missing ones into one report.
func (r *Repository) verifyDestinations(ctx context.Context, doc *models.Document) error {
	report := NewActiveLinkError()
	source := doc.ID.String()
	for _, to := range doc.ReferenceTargets() {
		exists, err := r.docs.Exists(ctx, to)
		if err != nil {
			return fmt.Errorf("checking link target %s: %w", to, err)
		}
		if !exists {
			report.Add(to.String(), source)
		}
	}
	for _, categ := range doc.ClassificationTargets() {
		exists, err := r.classes.Exists(ctx, categ.ClassID, categ.CategID)
		if err != nil {
			return fmt.Errorf("checking category %s: %w", categ.Key(), err)
		}
		if !exists {
			report.Add(categ.Key(), source)
		}
	}
	return report.OrNil()
}

// compensation is one inverse action recorded during a multi-store write.
type compensation struct {
	name string
	undo func(ctx context.Context) error
}

// rollback runs recorded inverses in reverse order, logging failures.
func (r *Repository) rollback(ctx context.Context, comps []compensation) {
	for i := len(comps) - 1; i >= 0; i-- {
		if err := comps[i].undo(ctx); err != nil {
			r.logger.Error("compensating action failed", "action", comps[i].name, "error", err)
		}
	}
}

// persistNew writes a new document to the three stores in the fixed order,
// recording an inverse per successful sub-write. On failure the recorded
// inverses run and the error is returned.
func (r *Repository) persistNew(ctx context.Context, doc *models.Document) ([]compensation, error) {
	var comps []compensation
	key := doc.ID.String()

	if err := r.index.Create(ctx, index.Project(doc)); err != nil {
		return nil, fmt.Errorf("indexing %s: %w", key, err)
	}
	comps = append(comps, compensation{
		name: "delete index projection " + key,
		undo: func(ctx context.Context) error { return r.index.Delete(ctx, key) },
	})

	if err := r.docs.Create(ctx, doc); err != nil {
		r.rollback(ctx, comps)
		return nil, err
	}
	comps = append(comps, compensation{
		name: "delete document " + key,
		undo: func(ctx context.Context) error { return r.docs.Delete(ctx, doc.ID) },
	})

	if err := r.linkSync.Replay(ctx, doc); err != nil {
		r.rollback(ctx, comps)
		return nil, err
	}
	comps = append(comps, compensation{
		name: "clear edges of " + key,
		undo: func(ctx context.Context) error { return r.linkSync.Clear(ctx, doc.ID) },
	})

	return comps, nil
}

// persistExisting re-writes an existing document to the three stores in
// the fixed order.
func (r *Repository) persistExisting(ctx context.Context, doc *models.Document) error {
	if err := r.index.Update(ctx, index.Project(doc)); err != nil {
		return fmt.Errorf("re-indexing %s: %w", doc.ID, err)
	}
	if err := r.docs.Update(ctx, doc); err != nil {
		return err
	}
	return r.linkSync.Replay(ctx, doc)
}

// removeEntity clears one document from the three stores, best-effort.
func (r *Repository) removeEntity(ctx context.Context, doc *models.Document) error {
	var errs []error
	if err := r.index.Delete(ctx, doc.ID.String()); err != nil {
		errs = append(errs, fmt.Errorf("unindexing %s: %w", doc.ID, err))
	}
	if err := r.linkSync.Clear(ctx, doc.ID); err != nil {
		errs = append(errs, err)
	}
	if err := r.docs.Delete(ctx, doc.ID); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// removeDerivate deletes a derivate's payload, stores, and owner links.
// Owners contained in skipOwners are being deleted themselves and are not
// re-persisted.
func (r *Repository) removeDerivate(ctx context.Context, id models.ObjectID, skipOwners map[string]struct{}) error {
	doc, err := r.docs.Retrieve(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		r.logger.Warn("derivate already gone", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", id, err)
	}
	var errs []error
	if doc.Derivate != nil && doc.Derivate.ContentID != "" {
		if err := r.content.Delete(ctx, doc.Derivate.ContentID); err != nil {
			errs = append(errs, fmt.Errorf("deleting payload of %s: %w", id, err))
		}
	}
	if doc.Derivate != nil {
		for _, owner := range doc.Derivate.Owners {
			if skipOwners != nil {
				if _, skip := skipOwners[owner.To.String()]; skip {
					continue
				}
			}
			if err := r.detachDerivate(ctx, owner.To, id); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := r.removeEntity(ctx, doc); err != nil {
		errs = append(errs, err)
	}
	r.bus.Dispatch(ctx, events.Event{Type: events.Deleted, Doc: doc})
	return errors.Join(errs...)
}

// collectSubtree returns the object documents of the deletion subtree in
// breadth-first order and the set of every id (objects and derivates) that
// the cascade will remove. Unloadable children are logged and skipped.
func (r *Repository) collectSubtree(ctx context.Context, root *models.Document) ([]*models.Document, map[string]struct{}) {
	order := []*models.Document{root}
	inSet := map[string]struct{}{root.ID.String(): {}}
	queue := append([]models.LinkRef(nil), root.Structure.Children...)
	for len(queue) > 0 {
		link := queue[0]
		queue = queue[1:]
		if _, dup := inSet[link.To.String()]; dup {
			continue
		}
		doc, err := r.docs.Retrieve(ctx, link.To)
		if err != nil {
			r.logger.Error("skipping unloadable child", "id", link.To, "error", err)
			continue
		}
		order = append(order, doc)
		inSet[doc.ID.String()] = struct{}{}
		queue = append(queue, doc.Structure.Children...)
	}
	for _, doc := range order {
		for _, dlink := range doc.Structure.Derivates {
			inSet[dlink.To.String()] = struct{}{}
		}
	}
	return order, inSet
}

// checkActiveLinks blocks the cascade when anything outside the deletion
// set still references a member of it.
func (r *Repository) checkActiveLinks(ctx context.Context, order []*models.Document, inSet map[string]struct{}) error {
	report := NewActiveLinkError()
	check := func(dest string) error {
		sources, err := r.links.SourcesTo(ctx, models.EdgeReference, dest)
		if err != nil {
			return fmt.Errorf("checking incoming links of %s: %w", dest, err)
		}
		for _, src := range sources {
			if _, internal := inSet[src]; !internal {
				report.Add(dest, src)
			}
		}
		return nil
	}
	for _, doc := range order {
		if err := check(doc.ID.String()); err != nil {
			return err
		}
		for _, dlink := range doc.Structure.Derivates {
			if err := check(dlink.To.String()); err != nil {
				return err
			}
		}
	}
	return report.OrNil()
}

// propagate re-persists every descendant of the updated document so
// inherited metadata flows downward. The walk is an explicit worklist and
// collects per-node failures instead of aborting.
func (r *Repository) propagate(ctx context.Context, root *models.Document) error {
	queue := append([]models.LinkRef(nil), root.Structure.Children...)
	var errs []error
	for len(queue) > 0 {
		link := queue[0]
		queue = queue[1:]
		doc, err := r.docs.Retrieve(ctx, link.To)
		if err != nil {
			errs = append(errs, fmt.Errorf("loading descendant %s: %w", link.To, err))
			continue
		}
		obj, err := ObjectFromDocument(doc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := r.refreshInherited(ctx, obj); err != nil {
			errs = append(errs, err)
			continue
		}
		obj.Service.ModifiedAt = time.Now().UTC()
		next := obj.Document()
		if err := r.persistExisting(ctx, next); err != nil {
			errs = append(errs, fmt.Errorf("re-persisting descendant %s: %w", obj.ID, err))
			continue
		}
		queue = append(queue, next.Structure.Children...)
	}
	return errors.Join(errs...)
}

// attachChild appends a child link to the parent and re-persists it.
// Appending an already-present child is a no-op.
func (r *Repository) attachChild(ctx context.Context, parentID models.ObjectID, child models.LinkRef) error {
	doc, err := r.docs.Retrieve(ctx, parentID)
	if err != nil {
		return fmt.Errorf("loading parent %s: %w", parentID, err)
	}
	parent, err := ObjectFromDocument(doc)
	if err != nil {
		return err
	}
	if !parent.Structure.AddChild(child) {
		return nil
	}
	return r.persistExisting(ctx, parent.Document())
}

// detachChild removes a child link from the parent and re-persists it.
func (r *Repository) detachChild(ctx context.Context, parentID, childID models.ObjectID) error {
	doc, err := r.docs.Retrieve(ctx, parentID)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading parent %s: %w", parentID, err)
	}
	parent, err := ObjectFromDocument(doc)
	if err != nil {
		return err
	}
	if !parent.Structure.RemoveChild(childID) {
		return nil
	}
	return r.persistExisting(ctx, parent.Document())
}

// attachDerivate appends a derivate link to the owner and re-persists it.
func (r *Repository) attachDerivate(ctx context.Context, ownerID models.ObjectID, dlink models.LinkRef) error {
	doc, err := r.docs.Retrieve(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("loading owner %s: %w", ownerID, err)
	}
	owner, err := ObjectFromDocument(doc)
	if err != nil {
		return err
	}
	if err := owner.Structure.AddDerivate(dlink); err != nil {
		return err
	}
	return r.persistExisting(ctx, owner.Document())
}

// detachDerivate removes a derivate link from the owner and re-persists it.
func (r *Repository) detachDerivate(ctx context.Context, ownerID, derivateID models.ObjectID) error {
	doc, err := r.docs.Retrieve(ctx, ownerID)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading owner %s: %w", ownerID, err)
	}
	owner, err := ObjectFromDocument(doc)
	if err != nil {
		return err
	}
	if !owner.Structure.RemoveDerivate(derivateID) {
		return nil
	}
	return r.persistExisting(ctx, owner.Document())
}
