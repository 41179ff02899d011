package builtin

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/convert"
	"github.com/cristianoliveira/cmdflow/internal/input"
	"github.com/cristianoliveira/cmdflow/internal/validation"
)

// Context attribute keys shared by the project-new pages.
const (
	projectAttr = "project-new.project"
	planAttr    = "project-new.plan"
)

const (
	FeatureDatabase = "database"
	FeatureDocker   = "docker"
	FeatureCI       = "ci"
)

var projectName = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Plan returns the steps recorded by the project-new pages that ran.
func Plan(ctx *command.Context) []string {
	v, ok := ctx.Attribute(planAttr)
	if !ok {
		return nil
	}
	steps, _ := v.([]string)
	return append([]string(nil), steps...)
}

func addStep(ctx *command.Context, step string) {
	ctx.SetAttribute(planAttr, append(Plan(ctx), step))
}

// NewProject is the first page of the project-new wizard. It asks for the
// name, the kind and the optional features; each selected feature adds a
// page of its own.
type NewProject struct {
	command.Base
	name     *input.Input
	kind     *input.Input
	features *input.Input
}

// NewNewProject is the command.Factory of NewProject.
func NewNewProject() command.Command { return &NewProject{} }

func (p *NewProject) Metadata() command.Metadata {
	return command.Metadata{
		Name:        "projectNew",
		Description: "Scaffold a project plan step by step",
		Category:    "samples",
	}
}

func (p *NewProject) InitializeUI(b *command.Builder) error {
	p.name = input.New("name",
		input.WithDescription("project name"),
		input.Required(),
	)
	p.kind = input.New("kind",
		input.WithDescription("kind of project"),
		input.WithChoices("library", "service"),
		input.WithDefault("library"),
	)
	p.features = input.New("features",
		input.WithDescription("optional features, one page each"),
		input.WithChoices(FeatureDatabase, FeatureDocker, FeatureCI),
		input.ManyValued(),
	)
	b.Add(p.name).Add(p.kind).Add(p.features)
	b.Context().SetAttribute(projectAttr, p)
	return nil
}

// Name returns the entered project name.
func (p *NewProject) Name() string { return p.name.StringValue() }

func (p *NewProject) Validate(vctx *validation.Context) {
	if name := p.name.StringValue(); name != "" && !projectName.MatchString(name) {
		vctx.AddError("name", "name must start with a letter and contain only lower case letters, digits and dashes")
	}
	seen := make(map[string]bool)
	for _, f := range p.features.StringValues() {
		if seen[f] {
			vctx.AddError("features", fmt.Sprintf("feature %s selected twice", f))
			break
		}
		seen[f] = true
	}
	if p.kind.StringValue() == "service" && !seen[FeatureDocker] {
		vctx.AddWarning("features", "services are usually shipped with docker")
	}
}

func (p *NewProject) Next(*command.Context) command.NavigationResult {
	var pages []command.Factory
	for _, f := range p.features.StringValues() {
		if factory, ok := featurePages[f]; ok {
			pages = append(pages, factory)
		}
	}
	if len(pages) == 0 {
		return command.Terminal()
	}
	return command.NavigateTo(pages[0], pages[1:]...)
}

func (p *NewProject) Execute(ectx *command.ExecutionContext) (command.Result, error) {
	step := fmt.Sprintf("create %s %s", p.kind.StringValue(), p.Name())
	addStep(ectx.UI, step)
	fmt.Fprintln(ectx.Out, step)
	return command.Success(step), nil
}

var featurePages = map[string]command.Factory{
	FeatureDatabase: NewDatabasePage,
	FeatureDocker:   NewDockerPage,
	FeatureCI:       NewCIPage,
}

// project returns the first page of the running wizard, if any.
func project(ctx *command.Context) (*NewProject, bool) {
	v, ok := ctx.Attribute(projectAttr)
	if !ok {
		return nil, false
	}
	p, ok := v.(*NewProject)
	return p, ok
}

// DatabasePage configures the database engine.
type DatabasePage struct {
	command.Base
	engine *input.Input
	port   *input.Input
}

func NewDatabasePage() command.Command { return &DatabasePage{} }

func (d *DatabasePage) Metadata() command.Metadata {
	return command.Metadata{Name: "projectDatabase", Description: "Database settings", Category: "samples"}
}

func (d *DatabasePage) InitializeUI(b *command.Builder) error {
	d.engine = input.New("engine",
		input.WithDescription("database engine"),
		input.WithChoices("postgres", "sqlite"),
		input.WithDefault("sqlite"),
	)
	d.port = input.New("port",
		input.WithDescription("server port"),
		input.WithType(convert.Int),
		input.WithDefault(5432),
		input.EnabledWhen(func() bool { return d.engine.StringValue() == "postgres" }),
		input.WithValidator(func(in *input.Input, vctx *validation.Context) {
			if n := in.IntValue(); n < 1 || n > 65535 {
				vctx.AddError(in.Name(), "port must be between 1 and 65535")
			}
		}),
	)
	b.Add(d.engine).Add(d.port)
	return nil
}

func (d *DatabasePage) Next(*command.Context) command.NavigationResult { return command.Terminal() }

func (d *DatabasePage) Execute(ectx *command.ExecutionContext) (command.Result, error) {
	step := "add database " + d.engine.StringValue()
	if d.port.IsEnabled() {
		step += fmt.Sprintf(" on port %d", d.port.IntValue())
	}
	addStep(ectx.UI, step)
	fmt.Fprintln(ectx.Out, step)
	return command.Success(step), nil
}

// DockerPage configures the container image.
type DockerPage struct {
	command.Base
	image *input.Input
}

func NewDockerPage() command.Command { return &DockerPage{} }

func (d *DockerPage) Metadata() command.Metadata {
	return command.Metadata{Name: "projectDocker", Description: "Container settings", Category: "samples"}
}

func (d *DockerPage) InitializeUI(b *command.Builder) error {
	ctx := b.Context()
	d.image = input.New("image",
		input.WithDescription("image name"),
		input.Required(),
		input.WithDefaultFunc(func() any {
			if p, ok := project(ctx); ok && p.Name() != "" {
				return p.Name() + ":latest"
			}
			return ""
		}),
	)
	b.Add(d.image)
	return nil
}

func (d *DockerPage) Validate(vctx *validation.Context) {
	if strings.ContainsAny(d.image.StringValue(), " \t") {
		vctx.AddError("image", "image must not contain spaces")
	}
}

func (d *DockerPage) Next(*command.Context) command.NavigationResult { return command.Terminal() }

func (d *DockerPage) Execute(ectx *command.ExecutionContext) (command.Result, error) {
	step := "build image " + d.image.StringValue()
	addStep(ectx.UI, step)
	fmt.Fprintln(ectx.Out, step)
	return command.Success(step), nil
}

// CIPage picks the CI provider.
type CIPage struct {
	command.Base
	provider *input.Input
}

func NewCIPage() command.Command { return &CIPage{} }

func (c *CIPage) Metadata() command.Metadata {
	return command.Metadata{Name: "projectCi", Description: "Continuous integration settings", Category: "samples"}
}

func (c *CIPage) InitializeUI(b *command.Builder) error {
	c.provider = input.New("provider",
		input.WithDescription("CI provider"),
		input.WithChoices("github", "gitlab"),
		input.WithDefault("github"),
	)
	b.Add(c.provider)
	return nil
}

func (c *CIPage) Next(*command.Context) command.NavigationResult { return command.Terminal() }

func (c *CIPage) Execute(ectx *command.ExecutionContext) (command.Result, error) {
	step := "configure ci on " + c.provider.StringValue()
	addStep(ectx.UI, step)
	fmt.Fprintln(ectx.Out, step)
	return command.Success(step), nil
}
