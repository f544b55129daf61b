package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"welcomecraft/internal/adapter/site_http"
	"welcomecraft/internal/domain"
)

func newCandidatesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates [prompt]",
		Short: "Show candidate artifacts for every block slot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFrom(v)
			if err != nil {
				return err
			}
			bundle, err := client.Candidates(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if v.GetBool("json") {
				return writeJSON(cmd.OutOrStdout(), bundle)
			}

			table := newTable(cmd.OutOrStdout())
			table.Header([]string{"BLOCK", "SLOT", "KINDS", "ARTIFACT", "TITLE"})
			for _, block := range bundle.Blocks {
				for _, slot := range block.Slots {
					kinds := make([]string, len(slot.SlotDefinition.Kinds))
					for i, k := range slot.SlotDefinition.Kinds {
						kinds[i] = string(k)
					}
					if len(slot.Candidates) == 0 {
						_ = table.Append([]string{block.BlockType, slot.SlotName, strings.Join(kinds, ","), "-", "-"})
						continue
					}
					for _, c := range slot.Candidates {
						_ = table.Append([]string{block.BlockType, slot.SlotName, strings.Join(kinds, ","), c.ArtifactID.String(), c.Title})
					}
				}
			}
			if err := table.Render(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d candidates\n", bundle.TotalArtifacts)
			return nil
		},
	}
}

func newGenerateCmd(v *viper.Viper) *cobra.Command {
	var (
		title  string
		dryRun bool
		async  bool
		wait   bool
	)
	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate an onboarding site",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFrom(v)
			if err != nil {
				return err
			}
			req := site_http.GenerateSiteRequest{
				Prompt: strings.Join(args, " "),
				Title:  title,
				DryRun: dryRun,
			}
			out := cmd.OutOrStdout()

			if async {
				job, err := client.Enqueue(cmd.Context(), req)
				if err != nil {
					return err
				}
				if wait {
					job, err = client.WaitJob(cmd.Context(), job.ID, time.Second)
					if err != nil {
						return err
					}
				}
				return printJob(cmd, v, job)
			}

			resp, err := client.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			if v.GetBool("json") {
				return writeJSON(out, resp)
			}

			artifactID := "(dry run)"
			if resp.ArtifactID != nil {
				artifactID = *resp.ArtifactID
			}
			fmt.Fprintf(out, "artifact: %s\nmodel:    %s\nfallback: %t\n", artifactID, resp.Model, resp.Fallback)
			if resp.Reason != "" {
				fmt.Fprintf(out, "reason:   %s\n", resp.Reason)
			}

			table := newTable(out)
			table.Header([]string{"BLOCK", "SLOT", "ARTIFACT"})
			for _, block := range resp.Site.Blocks {
				def, _ := domain.LookupBlock(block.Type)
				for _, slot := range def.Slots {
					_ = table.Append([]string{block.Type, slot.Name, emptyDash(block.Slots[slot.Name].ArtifactID)})
				}
			}
			return table.Render()
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title of the stored site artifact")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "return the site without storing it")
	cmd.Flags().BoolVar(&async, "async", false, "queue a generation job instead of waiting inline")
	cmd.Flags().BoolVar(&wait, "wait", false, "with --async, poll until the job finishes")
	return cmd
}

func newJobCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "job <job-id>",
		Short: "Show the status of a generation job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFrom(v)
			if err != nil {
				return err
			}
			job, err := client.Job(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJob(cmd, v, job)
		},
	}
}

func printJob(cmd *cobra.Command, v *viper.Viper, job *site_http.JobResponse) error {
	out := cmd.OutOrStdout()
	if v.GetBool("json") {
		return writeJSON(out, job)
	}
	fmt.Fprintf(out, "job:      %s\nstatus:   %s\n", job.ID, statusText(job.Status, !v.GetBool("no-color")))
	if job.ResultArtifactID != nil {
		fmt.Fprintf(out, "artifact: %s\n", *job.ResultArtifactID)
	}
	if job.Error != nil {
		fmt.Fprintf(out, "error:    %s\n", *job.Error)
	}
	return nil
}
