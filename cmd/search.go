package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/naka-gawa/github-dashboard/internal/cache"
	"github.com/naka-gawa/github-dashboard/internal/search"
	"github.com/naka-gawa/github-dashboard/internal/usecase"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Searches pull requests, issues, repositories, organizations and stars",
	Long: `Searches the cached entities. Filters take the form field:operator:value,
where operator is one of contains, eq, gt, lt, before, after.
With --watch, queries are read line by line from standard input and each burst
of input is answered once it settles.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		doRefresh, _ := cmd.Flags().GetBool("refresh")
		cfg := mustConfig(cmd, doRefresh)
		session, store := newSession(cfg, logger)
		if doRefresh {
			if err := store.SaveState(refresh(cmd.Context(), session)); err != nil {
				logger.Printf("Failed to write cache: %v", err)
			}
		}
		if session.Current() == nil {
			exitf("No cached data in %s. Run `github-dashboard sync` or pass --refresh.", store.Path())
		}

		base, err := queryFromFlags(cmd)
		if err != nil {
			exitf("Error: %v", err)
		}

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			watchQueries(os.Stdin, os.Stdout, session, store, base, logger)
			return
		}

		base.Text = strings.Join(args, " ")
		printResults(os.Stdout, session.Search(base))
		if err := store.AddQuery(base.Text); err != nil {
			logger.Printf("Failed to record query history: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringArrayP("filter", "f", nil, "Filter condition field:operator:value (repeatable)")
	searchCmd.Flags().StringP("category", "c", "all", "all, repositories, pull_requests, issues, organizations or starred")
	searchCmd.Flags().StringP("sort", "s", "relevance", "relevance, newest, oldest, stars or active")
	searchCmd.Flags().StringP("group-by", "g", "", "repository, type, owner or language")
	searchCmd.Flags().Bool("watch", false, "Read queries from stdin and answer each once input settles")
	searchCmd.Flags().Bool("refresh", false, "Fetch from GitHub before searching")
}

func queryFromFlags(cmd *cobra.Command) (search.Query, error) {
	var q search.Query
	rawFilters, _ := cmd.Flags().GetStringArray("filter")
	for _, raw := range rawFilters {
		f, err := search.ParseFilter(raw)
		if err != nil {
			return q, err
		}
		q.Filters = append(q.Filters, f)
	}

	category, _ := cmd.Flags().GetString("category")
	sortBy, _ := cmd.Flags().GetString("sort")
	groupBy, _ := cmd.Flags().GetString("group-by")

	var err error
	if q.Category, err = search.ParseCategory(category); err != nil {
		return q, err
	}
	if q.Sort, err = search.ParseSort(sortBy); err != nil {
		return q, err
	}
	if q.GroupBy, err = search.ParseGroupKey(groupBy); err != nil {
		return q, err
	}
	return q, nil
}

// watchQueries debounces stdin lines into searches. At EOF the last query is
// answered immediately if the debouncer has not delivered it yet.
func watchQueries(in io.Reader, out io.Writer, session *usecase.Session, store *cache.Store, base search.Query, logger *log.Logger) {
	var mu sync.Mutex
	var lastDelivered string
	delivered, closed := false, false

	debouncer := search.NewDebouncer(search.DefaultDebounce, session.Search, func(q search.Query, results []search.Result) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		lastDelivered, delivered = q.Text, true
		fmt.Fprintf(out, "--- %q: %d results\n", q.Text, len(results))
		printResults(out, results)
		if err := store.AddQuery(q.Text); err != nil {
			logger.Printf("Failed to record query history: %v", err)
		}
	})

	var last string
	pending := false
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		q := base
		q.Text = strings.TrimSpace(scanner.Text())
		last, pending = q.Text, true
		debouncer.Trigger(q)
	}
	debouncer.Stop()

	mu.Lock()
	defer mu.Unlock()
	closed = true
	if pending && (!delivered || lastDelivered != last) {
		q := base
		q.Text = last
		results := session.Search(q)
		fmt.Fprintf(out, "--- %q: %d results\n", q.Text, len(results))
		printResults(out, results)
		if err := store.AddQuery(q.Text); err != nil {
			logger.Printf("Failed to record query history: %v", err)
		}
	}
}

func printResults(w io.Writer, results []search.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	for _, r := range results {
		if r.IsGroupHeader {
			fmt.Fprintf(w, "\n%s (%d)\n", r.GroupName, r.Count)
			continue
		}
		it := r.Item
		line := fmt.Sprintf("  [%s] %s", it.Type, it.Title)
		if it.State != "" {
			line += " (" + it.State + ")"
		}
		if r.Score > 0 {
			line += fmt.Sprintf("  score=%.1f", r.Score)
		}
		if it.URL != "" {
			line += "  " + it.URL
		}
		fmt.Fprintln(w, line)
	}
}
