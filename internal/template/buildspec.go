package template

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type buildSpec struct {
	Version   string         `yaml:"version"`
	Phases    buildPhases    `yaml:"phases"`
	Artifacts buildArtifacts `yaml:"artifacts"`
}

type buildPhases struct {
	Install buildPhase `yaml:"install"`
	Build   buildPhase `yaml:"build"`
}

type buildPhase struct {
	Commands []string `yaml:"commands"`
}

type buildArtifacts struct {
	Files []string `yaml:"files"`
}

// renderBuildSpec returns the inline CodeBuild spec shared by every service.
// It copies the service's configured build and deploy spec over the default
// file names when those files exist in the checked out source.
func renderBuildSpec() (string, error) {
	spec := buildSpec{
		Version: "0.2",
		Phases: buildPhases{
			Install: buildPhase{Commands: []string{
				"echo Installing dependencies...",
			}},
			Build: buildPhase{Commands: []string{
				"echo Build started on `date`",
				"echo Handling custom specs...",
				overrideCommand("BUILDSPEC_PATH", "buildspec.yml"),
				overrideCommand("APPSPEC_PATH", "appspec.yml"),
			}},
		},
		Artifacts: buildArtifacts{Files: []string{"**/*"}},
	}
	b, err := yaml.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("marshal buildspec: %w", err)
	}
	return string(b), nil
}

func overrideCommand(envVar, target string) string {
	return fmt.Sprintf(`if [ "$%[1]s" != "%[2]s" ] && [ -f "$%[1]s" ]; then cp "$%[1]s" %[2]s; fi`, envVar, target)
}
