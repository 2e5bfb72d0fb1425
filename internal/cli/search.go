package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"coursechat/internal/app"
	"coursechat/internal/prompt"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Show the catalog context retrieved for a query, without generation",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg, err := loadConfig()
		if err != nil {
			exitErr("config", err)
		}
		if k, _ := cmd.Flags().GetInt("top-k"); k > 0 {
			cfg.Retriever.TopK = k
		}
		r, err := app.BuildRetrieval(ctx, cfg)
		if err != nil {
			exitErr("startup", err)
		}

		res, err := r.Retriever.Retrieve(ctx, strings.Join(args, " "))
		if err != nil {
			exitErr("search", err)
		}
		if scores, _ := cmd.Flags().GetBool("scores"); scores {
			fmt.Printf("embedder %s, %d dims\n\n", r.Index.Embedder().Name(), r.Index.Dimension())
			for _, m := range res.Courses {
				fmt.Printf("course      %.4f  %s\n", m.Score, m.Course.Name)
			}
			for _, m := range res.Instructors {
				fmt.Printf("instructor  %.4f  %s\n", m.Score, m.Instructor.Name)
			}
			fmt.Println()
		}
		fmt.Println(prompt.FormatContext(res.CourseList(), res.InstructorList()))
	},
}

func init() {
	searchCmd.Flags().IntP("top-k", "k", 0, "Results per kind (overrides retriever.top_k)")
	searchCmd.Flags().Bool("scores", false, "Print similarity scores")
	RootCmd.AddCommand(searchCmd)
}
