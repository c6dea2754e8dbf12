package objdb

import (
	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/binding"
	"github.com/xiaonanln/goelko/engine/gwlog"
	"go.uber.org/multierr"
)

// ClassTag maps one type tag to the name of a registered capability
type ClassTag struct {
	Tag  string
	Name string
}

// ClassDesc is a stored list of ClassTags, e.g.
//
//	{type:"classes", classes:[{type:"class", tag:"room", name:"game.Room"}]}
type ClassDesc struct {
	Classes []*ClassTag
}

var (
	// ClassTagCapability decodes the entries of a class descriptor
	ClassTagCapability = binding.TypeCapability("objdb.ClassTag", (*ClassTag)(nil))
	// ClassDescCapability decodes class descriptor objects
	ClassDescCapability = binding.TypeCapability("objdb.ClassDesc", (*ClassDesc)(nil))
)

func init() {
	ClassTagCapability.SetConstructor(binding.NewParamSpec(0,
		binding.Required("tag", binding.String),
		binding.Required("name", binding.String),
	), binding.Func(func(tag string, name string) *ClassTag {
		return &ClassTag{Tag: tag, Name: name}
	}))

	ClassDescCapability.SetConstructor(binding.NewParamSpec(0,
		binding.Required("classes", binding.SliceOf(binding.Decodable(ClassTagCapability))),
	), binding.Func(func(classes []interface{}) *ClassDesc {
		desc := &ClassDesc{}
		for _, c := range classes {
			desc.Classes = append(desc.Classes, c.(*ClassTag))
		}
		return desc
	}))
}

// Apply adds every class of desc whose capability is registered to db
func (desc *ClassDesc) Apply(db *ObjDB) error {
	var errs error
	for _, ct := range desc.Classes {
		c := binding.LookupCapability(ct.Name)
		if c == nil {
			errs = multierr.Append(errs, errors.Errorf("class '%s' of tag '%s' is not registered", ct.Name, ct.Tag))
			continue
		}
		db.AddClass(ct.Tag, c)
	}
	return errs
}

// LoadClassDesc loads class descriptor objects and adds their classes to the class
// table. Every ref is tried, and the errors of all of them are returned together.
func (db *ObjDB) LoadClassDesc(refs ...string) error {
	var errs error
	for _, ref := range refs {
		obj, err := db.Load(ref, ClassDescCapability)
		if err != nil {
			gwlog.Errorf("objdb: load class descriptor %s failed: %s", ref, err)
			errs = multierr.Append(errs, errors.Wrapf(err, "class descriptor %s", ref))
			continue
		}
		if err := obj.(*ClassDesc).Apply(db); err != nil {
			gwlog.Errorf("objdb: class descriptor %s: %s", ref, err)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
