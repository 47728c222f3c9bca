package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openstudydata/ddiwalk/mapping"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the mapped canonical fields",
	Long:  `List every field of the mapping profile and its extractor kinds.`,
	RunE:  runFields,
}

func init() {
	fieldsCmd.Flags().StringVar(&profileFile, "profile-file", "", "Custom mapping profile YAML file")
}

func runFields(cmd *cobra.Command, _ []string) error {
	var p *mapping.Profile
	var err error
	if profileFile != "" {
		p, err = mapping.LoadProfile(profileFile)
	} else {
		p, err = mapping.LoadEmbedded(mapping.DDIProfileName)
	}
	if err != nil {
		return err
	}

	fs, err := p.Build()
	if err != nil {
		return err
	}

	fmt.Printf("Profile: %s", p.Name)
	if p.Version != "" {
		fmt.Printf(" (version %s)", p.Version)
	}
	fmt.Println()
	for _, name := range fs.Keys() {
		spec := p.Fields[name]
		fmt.Printf("  %-24s %s\n", name, strings.Join(spec.Kinds(), " > "))
	}
	return nil
}
