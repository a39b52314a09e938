package models

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/depotkit/depot/pkg/xmlutil"
)

// StructureData is the serializable structural position of an object:
// its parent link, ordered child links and derivate links.
type StructureData struct {
	Parent    *LinkRef
	Children  []LinkRef
	Derivates []LinkRef
}

// ServiceFlag is one free-form service flag.
type ServiceFlag struct {
	Type  string
	Value string
}

// ServiceData carries the dates and flags of the service block.
type ServiceData struct {
	CreatedAt  time.Time
	ModifiedAt time.Time
	Flags      []ServiceFlag
}

// DerivateData is the payload descriptor of a derivate document.
type DerivateData struct {
	ContentID  string
	SourcePath string
	Owners     []LinkRef
}

// Document is the parsed canonical form of a persisted entity. It is what
// the document store serializes, caches and returns.
type Document struct {
	ID        ObjectID
	Label     string
	Schema    string
	Structure StructureData
	Metadata  Metadata
	Service   ServiceData
	Derivate  *DerivateData // nil for objects
}

// ReferenceTargets returns the destination ids of every reference edge the
// document gives rise to: object-link metadata values plus, for derivates,
// the owner links.
func (d *Document) ReferenceTargets() []ObjectID {
	var out []ObjectID
	for _, link := range d.Metadata.Links() {
		out = append(out, link.To)
	}
	if d.Derivate != nil {
		for _, owner := range d.Derivate.Owners {
			out = append(out, owner.To)
		}
	}
	return out
}

// ClassificationTargets returns the category of every classification edge
// the document gives rise to.
func (d *Document) ClassificationTargets() []CategoryRef {
	return d.Metadata.Classifications()
}

// xml wire shape

type documentXML struct {
	XMLName   xml.Name     `xml:"depotobject"`
	ID        string       `xml:"ID,attr"`
	Label     string       `xml:"label,attr"`
	Schema    string       `xml:"schema,attr"`
	Structure structureXML `xml:"structure"`
	Metadata  metadataXML  `xml:"metadata"`
	Service   serviceXML   `xml:"service"`
	Derivate  *derivateXML `xml:"derivate,omitempty"`
}

type linkXML struct {
	Href  string `xml:"href,attr"`
	Label string `xml:"label,attr,omitempty"`
	Title string `xml:"title,attr,omitempty"`
}

type structureXML struct {
	Parents   []linkXML `xml:"parents>parent"`
	Children  []linkXML `xml:"children>child"`
	Derivates []linkXML `xml:"derobjects>derobject"`
}

type metadataXML struct {
	Elements []elementXML `xml:"element"`
}

type elementXML struct {
	Name   string     `xml:"name,attr"`
	Values []valueXML `xml:"value"`
}

type valueXML struct {
	Kind      string `xml:"kind,attr"`
	Lang      string `xml:"lang,attr,omitempty"`
	Heritable bool   `xml:"heritable,attr,omitempty"`
	Inherited bool   `xml:"inherited,attr,omitempty"`
	Href      string `xml:"href,attr,omitempty"`
	LinkLabel string `xml:"label,attr,omitempty"`
	Title     string `xml:"title,attr,omitempty"`
	ClassID   string `xml:"classid,attr,omitempty"`
	CategID   string `xml:"categid,attr,omitempty"`
	Text      string `xml:",chardata"`
}

type serviceXML struct {
	CreateDate string    `xml:"createdate"`
	ModifyDate string    `xml:"modifydate"`
	Flags      []flagXML `xml:"flags>flag"`
}

type flagXML struct {
	Type string `xml:"type,attr"`
	Text string `xml:",chardata"`
}

type derivateXML struct {
	ContentID string    `xml:"contentid,attr,omitempty"`
	Source    string    `xml:"source,attr,omitempty"`
	Owners    []linkXML `xml:"linkmetas>linkmeta"`
}

// Marshal serializes the document to its canonical XML form.
func (d *Document) Marshal() ([]byte, error) {
	w := documentXML{
		ID:     d.ID.String(),
		Label:  d.Label,
		Schema: d.Schema,
		Structure: structureXML{
			Children:  linksToXML(d.Structure.Children),
			Derivates: linksToXML(d.Structure.Derivates),
		},
		Service: serviceXML{
			CreateDate: xmlutil.FormatTime(d.Service.CreatedAt),
			ModifyDate: xmlutil.FormatTime(d.Service.ModifiedAt),
		},
	}
	if d.Structure.Parent != nil {
		w.Structure.Parents = linksToXML([]LinkRef{*d.Structure.Parent})
	}
	for _, e := range d.Metadata.Elements {
		we := elementXML{Name: e.Name}
		for _, v := range e.Values {
			wv, err := valueToXML(v)
			if err != nil {
				return nil, fmt.Errorf("element %s: %w", e.Name, err)
			}
			we.Values = append(we.Values, wv)
		}
		w.Metadata.Elements = append(w.Metadata.Elements, we)
	}
	for _, f := range d.Service.Flags {
		w.Service.Flags = append(w.Service.Flags, flagXML{Type: f.Type, Text: f.Value})
	}
	if d.Derivate != nil {
		w.Derivate = &derivateXML{
			ContentID: d.Derivate.ContentID,
			Source:    d.Derivate.SourcePath,
			Owners:    linksToXML(d.Derivate.Owners),
		}
	}
	raw, err := xml.MarshalIndent(&w, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling document %s: %w", d.ID, err)
	}
	return append([]byte(xml.Header), raw...), nil
}

// ParseDocument deserializes a canonical XML document.
func ParseDocument(raw []byte) (*Document, error) {
	var w documentXML
	if err := xml.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("unmarshalling document: %w", err)
	}
	id, err := ParseID(w.ID)
	if err != nil {
		return nil, err
	}
	d := &Document{
		ID:     id,
		Label:  w.Label,
		Schema: w.Schema,
	}
	if len(w.Structure.Parents) > 0 {
		parent, err := linkFromXML(w.Structure.Parents[0])
		if err != nil {
			return nil, fmt.Errorf("document %s parent: %w", w.ID, err)
		}
		d.Structure.Parent = &parent
	}
	if d.Structure.Children, err = linksFromXML(w.Structure.Children); err != nil {
		return nil, fmt.Errorf("document %s children: %w", w.ID, err)
	}
	if d.Structure.Derivates, err = linksFromXML(w.Structure.Derivates); err != nil {
		return nil, fmt.Errorf("document %s derivates: %w", w.ID, err)
	}
	for _, we := range w.Metadata.Elements {
		e := MetaElement{Name: we.Name}
		for _, wv := range we.Values {
			v, err := valueFromXML(wv)
			if err != nil {
				return nil, fmt.Errorf("document %s element %s: %w", w.ID, we.Name, err)
			}
			e.Values = append(e.Values, v)
		}
		d.Metadata.Elements = append(d.Metadata.Elements, e)
	}
	if d.Service.CreatedAt, err = xmlutil.ParseTime(w.Service.CreateDate); err != nil {
		return nil, fmt.Errorf("document %s createdate: %w", w.ID, err)
	}
	if d.Service.ModifiedAt, err = xmlutil.ParseTime(w.Service.ModifyDate); err != nil {
		return nil, fmt.Errorf("document %s modifydate: %w", w.ID, err)
	}
	for _, f := range w.Service.Flags {
		d.Service.Flags = append(d.Service.Flags, ServiceFlag{Type: f.Type, Value: f.Text})
	}
	if w.Derivate != nil {
		owners, err := linksFromXML(w.Derivate.Owners)
		if err != nil {
			return nil, fmt.Errorf("document %s owners: %w", w.ID, err)
		}
		d.Derivate = &DerivateData{
			ContentID:  w.Derivate.ContentID,
			SourcePath: w.Derivate.Source,
			Owners:     owners,
		}
	}
	return d, nil
}

func linksToXML(links []LinkRef) []linkXML {
	out := make([]linkXML, len(links))
	for i, l := range links {
		out[i] = linkXML{Href: l.To.String(), Label: l.Label, Title: l.Title}
	}
	return out
}

func linkFromXML(w linkXML) (LinkRef, error) {
	to, err := ParseID(w.Href)
	if err != nil {
		return LinkRef{}, err
	}
	return LinkRef{To: to, Label: w.Label, Title: w.Title}, nil
}

func linksFromXML(ws []linkXML) ([]LinkRef, error) {
	var out []LinkRef
	for _, w := range ws {
		l, err := linkFromXML(w)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func valueToXML(v MetaValue) (valueXML, error) {
	if err := v.Validate(); err != nil {
		return valueXML{}, err
	}
	w := valueXML{
		Kind:      string(v.Kind),
		Lang:      v.Lang,
		Heritable: v.Heritable,
		Inherited: v.Inherited,
	}
	switch v.Kind {
	case KindText:
		w.Text = v.Text
	case KindDate, KindISODate:
		w.Text = xmlutil.FormatTime(v.Date)
	case KindNumber:
		w.Text = strconv.FormatFloat(v.Number, 'g', -1, 64)
	case KindBool:
		w.Text = strconv.FormatBool(v.Bool)
	case KindObjectLink:
		w.Href = v.Link.To.String()
		w.LinkLabel = v.Link.Label
		w.Title = v.Link.Title
	case KindClassification:
		w.ClassID = v.Class.ClassID
		w.CategID = v.Class.CategID
	}
	return w, nil
}

func valueFromXML(w valueXML) (MetaValue, error) {
	kind := ValueKind(w.Kind)
	v := MetaValue{
		Kind:      kind,
		Lang:      w.Lang,
		Heritable: w.Heritable,
		Inherited: w.Inherited,
	}
	var err error
	switch kind {
	case KindText:
		v.Text = w.Text
	case KindDate, KindISODate:
		if v.Date, err = xmlutil.ParseTime(w.Text); err != nil {
			return MetaValue{}, err
		}
	case KindNumber:
		if v.Number, err = strconv.ParseFloat(w.Text, 64); err != nil {
			return MetaValue{}, fmt.Errorf("parsing number value: %w", err)
		}
	case KindBool:
		if v.Bool, err = strconv.ParseBool(w.Text); err != nil {
			return MetaValue{}, fmt.Errorf("parsing boolean value: %w", err)
		}
	case KindObjectLink:
		to, err := ParseID(w.Href)
		if err != nil {
			return MetaValue{}, err
		}
		v.Link = &LinkRef{To: to, Label: w.LinkLabel, Title: w.Title}
	case KindClassification:
		v.Class = &CategoryRef{ClassID: w.ClassID, CategID: w.CategID}
	default:
		return MetaValue{}, fmt.Errorf("unknown metadata value kind %q", w.Kind)
	}
	if err := v.Validate(); err != nil {
		return MetaValue{}, err
	}
	return v, nil
}
