package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vitalvas/mosparo/client"
	"github.com/vitalvas/mosparo/formdata"
)

// errRejected is returned when mosparo does not accept the submission.
// The result has already been printed.
var errRejected = errors.New("submission rejected")

type verifyOutput struct {
	Submittable    bool              `json:"submittable" yaml:"submittable"`
	Valid          bool              `json:"valid" yaml:"valid"`
	VerifiedFields map[string]string `json:"verifiedFields" yaml:"verifiedFields"`
	Issues         []client.Issue    `json:"issues" yaml:"issues"`
}

func newVerifyCmd(flags *globalFlags) *cobra.Command {
	var (
		formPath        string
		submitToken     string
		validationToken string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a form submission",
		Long: `Verify a form submission read as a JSON object from --form or stdin.

The submit and validation tokens are taken from the flags, or from the
_mosparo_submitToken and _mosparo_validationToken fields of the form.
The command exits with status 1 when the submission is not submittable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := readForm(cmd.InOrStdin(), formPath)
			if err != nil {
				return err
			}

			c, done, err := newClient(cmd, flags)
			if err != nil {
				return err
			}
			defer done()

			result, err := c.VerifySubmission(cmd.Context(), form, submitToken, validationToken)
			if err != nil {
				return err
			}

			out := verifyOutput{
				Submittable:    result.IsSubmittable(),
				Valid:          result.IsValid(),
				VerifiedFields: result.VerifiedFields(),
				Issues:         result.Issues(),
			}

			if err := printResult(cmd.OutOrStdout(), flags.output, out); err != nil {
				return err
			}

			if !out.Submittable {
				return errRejected
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&formPath, "form", "f", "-", "JSON file with the submitted form data, - for stdin")
	cmd.Flags().StringVar(&submitToken, "submit-token", "", "submit token, overrides the form field")
	cmd.Flags().StringVar(&validationToken, "validation-token", "", "validation token, overrides the form field")

	return cmd
}

func readForm(stdin io.Reader, path string) (formdata.Mapping, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return formdata.ParseMapping(data)
}
