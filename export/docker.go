package export

import (
	"context"

	"github.com/blueflyio/openstandardagents/codegen"
	"github.com/blueflyio/openstandardagents/pipeline"
)

// dockerStage emits the container descriptors: a Dockerfile for the agent
// itself and a docker-compose file that also brings up the persistent
// memory backend when the manifest asks for one.
type dockerStage struct{}

func (s *dockerStage) Name() string { return "generate-docker" }

func (s *dockerStage) Execute(ctx context.Context, ec *pipeline.ExportContext) error {
	if !ec.Opts.IncludeDocker {
		return nil
	}
	data := buildEntrypointData(ec)

	dockerfile, err := codegen.Render("Dockerfile.tmpl", data)
	if err != nil {
		return err
	}
	if err := ec.Files.Add(s.Name(), codegen.File{
		Path:    "Dockerfile",
		Content: dockerfile,
		Type:    codegen.FileConfig,
	}); err != nil {
		return err
	}

	compose, err := codegen.Render("docker-compose.yml.tmpl", data)
	if err != nil {
		return err
	}
	return ec.Files.Add(s.Name(), codegen.File{
		Path:    "docker-compose.yml",
		Content: compose,
		Type:    codegen.FileConfig,
	})
}
