// Package menu builds the content tree of a document (sections, tag groups,
// tags and operations) and tracks which item is active.
package menu

import (
	"log/slog"
	"sort"

	"github.com/moamenhredeen/oasdoc/internal/config"
	"github.com/moamenhredeen/oasdoc/internal/markdown"
	"github.com/moamenhredeen/oasdoc/internal/models"
	"github.com/moamenhredeen/oasdoc/internal/parser"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	// GroupDepth is the depth of x-tagGroups items. Tags sit one level
	// below, operations two.
	GroupDepth = 0
	TagDepth   = GroupDepth + 1

	// SecurityDefinitions is the component listing the security schemes.
	SecurityDefinitions = "security-definitions"

	maxHeadingDepth = 2
)

// tagInfo is a tag together with the operations listed under it.
type tagInfo struct {
	name         string
	displayName  string
	description  string
	externalDocs *base.ExternalDoc
	traitTag     bool
	operations   []parser.OperationRef
}

type tagGroup struct {
	Name string   `yaml:"name"`
	Tags []string `yaml:"tags"`
}

type builder struct {
	parser   *parser.Parser
	opts     *config.Options
	md       *markdown.Renderer
	logger   *slog.Logger
	collator *collate.Collator
}

// BuildStructure returns the top level content items of the document:
// sections from the info description, then tag groups or tags. Operations
// without tags are listed after the tags, without a parent.
func BuildStructure(p *parser.Parser, opts *config.Options, logger *slog.Logger) []models.ContentItem {
	if logger == nil {
		logger = slog.Default()
	}
	b := &builder{
		parser:   p,
		opts:     opts,
		md:       markdown.NewRenderer(opts.UntrustedSpec),
		logger:   logger,
		collator: collate.New(language.Und),
	}

	tags, order := b.tagsWithOperations()

	items := b.markdownItems(InfoDescription(p.Model(), opts), nil, 1)
	if groups := b.tagGroups(); len(groups) > 0 {
		items = append(items, b.tagGroupsItems(groups, tags)...)
	} else {
		items = append(items, b.tagsItems(order, tags, nil)...)
	}
	return items
}

// InfoDescription returns the info description with the security schemes
// component appended under an Authentication heading, unless disabled or
// already present.
func InfoDescription(doc *v3.Document, opts *config.Options) string {
	if doc == nil || doc.Info == nil {
		return ""
	}
	description := doc.Info.Description
	if opts.NoAutoAuth || doc.Components == nil || doc.Components.SecuritySchemes == nil || doc.Components.SecuritySchemes.Len() == 0 {
		return description
	}
	if markdown.ContainsComponent(description, SecurityDefinitions) {
		return description
	}
	return markdown.AppendToMdHeading(description, "Authentication", markdown.InjectMarker(SecurityDefinitions))
}

// tagsWithOperations collects declared tags and the operations of each tag.
// Tags only used by operations are added in order of appearance, untagged
// operations go under the empty tag name.
func (b *builder) tagsWithOperations() (map[string]*tagInfo, []string) {
	tags := map[string]*tagInfo{}
	var order []string

	for _, tag := range b.parser.Model().Tags {
		if tag == nil {
			continue
		}
		if _, ok := tags[tag.Name]; !ok {
			order = append(order, tag.Name)
		}
		tags[tag.Name] = &tagInfo{
			name:         tag.Name,
			displayName:  models.ExtensionString(tag.Extensions, "x-displayName"),
			description:  tag.Description,
			externalDocs: tag.ExternalDocs,
			traitTag:     models.ExtensionBool(tag.Extensions, "x-traitTag"),
		}
	}

	refs := append(b.parser.Webhooks(), b.parser.Operations()...)
	for _, ref := range refs {
		names := ref.Operation.Tags
		if len(names) == 0 {
			names = []string{""}
		}
		for _, name := range names {
			tag, ok := tags[name]
			if !ok {
				tag = &tagInfo{name: name}
				tags[name] = tag
				order = append(order, name)
			}
			if tag.traitTag {
				continue
			}
			tag.operations = append(tag.operations, ref)
		}
	}

	return tags, order
}

func (b *builder) tagGroups() []tagGroup {
	node := models.Extension(b.parser.Model().Extensions, "x-tagGroups")
	if node == nil {
		return nil
	}
	var groups []tagGroup
	if err := node.Decode(&groups); err != nil {
		b.logger.Warn("ignoring malformed x-tagGroups", "error", err)
		return nil
	}
	return groups
}

func (b *builder) tagGroupsItems(groups []tagGroup, tags map[string]*tagInfo) []models.ContentItem {
	items := make([]models.ContentItem, 0, len(groups))
	for _, g := range groups {
		group := models.NewGroupModel(models.TypeGroup, "group/"+markdown.SafeSlugify(g.Name), g.Name, "", nil)
		group.Depth = GroupDepth
		group.Items = b.tagsItems(g.Tags, tags, group)
		items = append(items, group)
	}
	return items
}

func (b *builder) tagsItems(names []string, tags map[string]*tagInfo, parent *models.GroupModel) []models.ContentItem {
	var items []models.ContentItem
	for _, name := range names {
		tag, ok := tags[name]
		if !ok {
			b.logger.Warn("tag group references a tag that does not exist", "tag", name)
			continue
		}

		if tag.name == "" {
			items = append(items, b.markdownItems(tag.description, nil, TagDepth+1)...)
			items = append(items, b.operationsItems(tag, nil, TagDepth+1)...)
			continue
		}

		item := b.tagItem(tag, parent)
		item.Items = append(b.markdownItems(tag.description, item, TagDepth+1), b.operationsItems(tag, item, TagDepth+1)...)
		items = append(items, item)
	}

	if b.opts.SortTagsAlphabetically {
		b.sortByName(items)
	}
	return items
}

func (b *builder) tagItem(tag *tagInfo, parent *models.GroupModel) *models.GroupModel {
	name := tag.displayName
	if name == "" {
		name = tag.name
	}
	id := "tag/" + markdown.SafeSlugify(tag.name)
	if tag.traitTag {
		id = markdown.SectionPrefix + "/" + markdown.SafeSlugify(tag.name)
	}

	item := models.NewGroupModel(models.TypeTag, id, name, tag.description, parent)
	item.Depth = TagDepth
	if docs := tag.externalDocs; docs != nil && docs.URL != "" {
		item.ExternalDocs = &models.ExternalDocs{Description: docs.Description, URL: docs.URL}
	}
	return item
}

func (b *builder) operationsItems(tag *tagInfo, parent *models.GroupModel, depth int) []models.ContentItem {
	if len(tag.operations) == 0 {
		return nil
	}
	items := make([]models.ContentItem, 0, len(tag.operations))
	for _, ref := range tag.operations {
		op := models.NewOperationModel(b.parser, models.OperationSpec{
			Ref:            ref.Pointer(),
			HTTPVerb:       ref.Method,
			Operation:      ref.Operation,
			PathParameters: ref.PathItem.Parameters,
			PathServers:    ref.PathItem.Servers,
			IsWebhook:      ref.IsWebhook,
		}, parent, b.opts)
		op.Depth = depth
		items = append(items, op)
	}
	if b.opts.SortOperationsAlphabetically {
		b.sortByName(items)
	}
	return items
}

// markdownItems turns the headings of description into section items. The
// description of parent is cut before its first heading.
func (b *builder) markdownItems(description string, parent *models.GroupModel, depth int) []models.ContentItem {
	parentID := ""
	if parent != nil {
		parentID = parent.ID
	}
	headings := b.md.ExtractHeadings(description, maxHeadingDepth, parentID)
	if len(headings) > 0 && parent != nil && parent.Description != "" {
		parent.Description = b.md.TextBeforeFirstHeading(parent.Description, maxHeadingDepth)
	}
	return sectionItems(headings, parent, depth)
}

func sectionItems(headings []*markdown.Heading, parent *models.GroupModel, depth int) []models.ContentItem {
	items := make([]models.ContentItem, 0, len(headings))
	for _, h := range headings {
		section := models.NewGroupModel(models.TypeSection, h.ID, h.Name, h.Description, parent)
		section.Level = h.Level
		section.Depth = depth
		if len(h.Items) > 0 {
			section.Items = sectionItems(h.Items, section, depth+1)
		}
		items = append(items, section)
	}
	return items
}

func (b *builder) sortByName(items []models.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return b.collator.CompareString(items[i].Item().Name, items[j].Item().Name) < 0
	})
}
