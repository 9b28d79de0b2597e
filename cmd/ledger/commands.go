package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/models"
	"pocketledger/internal/pagination"
	"pocketledger/internal/services"
)

type credentials struct {
	email    *string
	password *string
}

func newFlags(name string) (*flag.FlagSet, credentials) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs, credentials{
		email:    fs.String("email", "", "account email"),
		password: fs.String("password", "", "account password"),
	}
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return apperrors.Wrap(apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%s: %v", fs.Name(), err)), err)
	}
	return nil
}

// login starts a session for the duration of one command.
func (a *app) login(c credentials) (*services.Session, func(), error) {
	sess, err := a.auth.Login(*c.email, *c.password)
	if err != nil {
		return nil, nil, err
	}
	return sess, func() { _ = a.auth.Logout(sess) }, nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) register(args []string) error {
	fs, c := newFlags("register")
	phone := fs.String("phone", "", "phone number")
	nickname := fs.String("nickname", "", "display name")
	avatar := fs.String("avatar", "", "avatar image path")
	if err := parse(fs, args); err != nil {
		return err
	}

	user, err := a.auth.Register(services.RegisterInput{
		Email:    *c.email,
		Phone:    *phone,
		Password: *c.password,
		Nickname: *nickname,
		Avatar:   *avatar,
	})
	if err != nil {
		return err
	}
	return a.print(map[string]string{"user_id": user.ID, "email": user.Email})
}

func (a *app) listCategories(args []string) error {
	fs := flag.NewFlagSet("categories", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	categoryType := fs.String("type", "", "income or expense")
	if err := parse(fs, args); err != nil {
		return err
	}
	categories, err := a.categories.ListCategoriesByType(*categoryType)
	if err != nil {
		return err
	}
	records := make([]models.CategoryRecord, len(categories))
	for i, cat := range categories {
		records[i] = cat.Record()
	}
	return a.print(records)
}

func (a *app) addEntry(args []string) error {
	fs, c := newFlags("add-entry")
	categoryID := fs.String("category", "", "category id")
	title := fs.String("title", "", "entry title")
	amount := fs.String("amount", "", "decimal amount")
	currency := fs.String("currency", "", "ISO 4217 code")
	note := fs.String("note", "", "free text note")
	at := fs.String("time", "", "ISO-8601 timestamp, defaults to now")
	tags := fs.String("tags", "", "comma separated tag ids")
	if err := parse(fs, args); err != nil {
		return err
	}

	value, err := models.ParseAmount(*amount)
	if err != nil {
		return apperrors.Wrap(apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a decimal number"), err)
	}
	var ts models.Timestamp
	if *at != "" {
		if ts, err = models.ParseTimestamp(*at); err != nil {
			return apperrors.Wrap(apperrors.WithMessage(apperrors.ErrInvalidInput, "time must be an ISO-8601 timestamp"), err)
		}
	}

	sess, logout, err := a.login(c)
	if err != nil {
		return err
	}
	defer logout()

	entry, err := a.entries.AddEntry(sess, services.NewEntryInput{
		CategoryID: *categoryID,
		Title:      *title,
		Amount:     value,
		Currency:   strings.ToUpper(*currency),
		Note:       *note,
		Timestamp:  ts,
		TagIDs:     splitList(*tags),
	})
	if err != nil {
		return err
	}
	return a.print(entry.Record())
}

// filterFlags registers the query flags shared by query and export.
func filterFlags(fs *flag.FlagSet) *services.EntryFilter {
	f := &services.EntryFilter{}
	fs.StringVar(&f.CategoryID, "category", "", "category id")
	fs.StringVar(&f.StartDate, "start", "", "inclusive start timestamp")
	fs.StringVar(&f.EndDate, "end", "", "inclusive end timestamp")
	fs.StringVar(&f.MinAmount, "min", "", "minimum amount")
	fs.StringVar(&f.MaxAmount, "max", "", "maximum amount")
	fs.StringVar(&f.Keyword, "keyword", "", "text in title or note")
	fs.Func("tags", "comma separated tag ids, any of which must match", func(s string) error {
		f.TagIDs = splitList(s)
		return nil
	})
	return f
}

func (a *app) query(args []string) error {
	fs, c := newFlags("query")
	filter := filterFlags(fs)
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 20, "page size")
	if err := parse(fs, args); err != nil {
		return err
	}

	sess, logout, err := a.login(c)
	if err != nil {
		return err
	}
	defer logout()

	result, err := a.entries.ListEntries(sess, *filter, pagination.PageRequest{Page: *page, PageSize: *size})
	if err != nil {
		return err
	}
	records := make([]models.EntryRecord, len(result.Data))
	for i, e := range result.Data {
		records[i] = e.Record()
	}
	return a.print(pagination.NewPageResponse(records, result.Page, result.PageSize, result.TotalItems))
}

func (a *app) showStats(args []string) error {
	fs, c := newFlags("stats")
	kind := fs.String("kind", "summary", "summary, category, tag, daily, monthly or top")
	start := fs.String("start", "", "inclusive start timestamp")
	end := fs.String("end", "", "inclusive end timestamp")
	year := fs.Int("year", time.Now().Year(), "year for monthly statistics")
	limit := fs.Int("limit", 10, "row count for top expenses")
	if err := parse(fs, args); err != nil {
		return err
	}

	from, err := optionalTimestamp("start", *start)
	if err != nil {
		return err
	}
	to, err := optionalTimestamp("end", *end)
	if err != nil {
		return err
	}

	sess, logout, err := a.login(c)
	if err != nil {
		return err
	}
	defer logout()
	userID := sess.UserID()

	var result any
	switch *kind {
	case "summary":
		result, err = a.stats.Summary(userID, from, to)
	case "category":
		result, err = a.stats.ByCategory(userID, from, to)
	case "tag":
		result, err = a.stats.ByTag(userID, from, to)
	case "daily":
		if from == nil || to == nil {
			return apperrors.WithMessage(apperrors.ErrInvalidQuery, "daily statistics need -start and -end")
		}
		result, err = a.stats.Daily(userID, *from, *to)
	case "monthly":
		result, err = a.stats.Monthly(userID, *year)
	case "top":
		var top []*models.Entry
		top, err = a.stats.TopExpenses(userID, from, to, *limit)
		records := make([]models.EntryRecord, len(top))
		for i, e := range top {
			records[i] = e.Record()
		}
		result = records
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown statistics kind %q", *kind))
	}
	if err != nil {
		return err
	}
	return a.print(result)
}

func (a *app) addBudget(args []string) error {
	fs, c := newFlags("budget-add")
	categoryID := fs.String("category", "", "category id, empty for the whole account")
	period := fs.String("period", "monthly", "daily, weekly, monthly or yearly")
	limit := fs.String("limit", "", "decimal limit")
	threshold := fs.Int("threshold", models.DefaultThreshold, "alert threshold percent")
	if err := parse(fs, args); err != nil {
		return err
	}
	value, err := models.ParseAmount(*limit)
	if err != nil {
		return apperrors.Wrap(apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be a decimal number"), err)
	}

	sess, logout, err := a.login(c)
	if err != nil {
		return err
	}
	defer logout()

	budget, err := a.budgets.AddBudget(sess, services.BudgetInput{
		CategoryID: *categoryID,
		Period:     *period,
		Limit:      value,
		Threshold:  threshold,
	})
	if err != nil {
		return err
	}
	return a.print(budget.Record())
}

func (a *app) budgetStatus(args []string) error {
	fs, c := newFlags("budget-status")
	if err := parse(fs, args); err != nil {
		return err
	}
	sess, logout, err := a.login(c)
	if err != nil {
		return err
	}
	defer logout()

	statuses, err := a.stats.BudgetStatus(sess.UserID())
	if err != nil {
		return err
	}
	if statuses == nil {
		statuses = []services.BudgetStatus{}
	}
	return a.print(statuses)
}

func (a *app) exportEntries(args []string) error {
	fs, c := newFlags("export")
	filter := filterFlags(fs)
	format := fs.String("format", string(services.ExportXLSX), "csv or xlsx")
	statistics := fs.Bool("stats", false, "export statistics instead of entries")
	out := fs.String("out", "", "output file, defaults to a dated name in the export directory")
	if err := parse(fs, args); err != nil {
		return err
	}

	path := *out
	if path == "" {
		name := "entries_" + time.Now().Format("20060102") + "." + *format
		if *statistics {
			name = "statistics_" + time.Now().Format("20060102") + ".xlsx"
		}
		path = filepath.Join(a.cfg.ExportDir, name)
	}

	sess, logout, err := a.login(c)
	if err != nil {
		return err
	}
	defer logout()

	if *statistics {
		from, err := optionalTimestamp("start", filter.StartDate)
		if err != nil {
			return err
		}
		to, err := optionalTimestamp("end", filter.EndDate)
		if err != nil {
			return err
		}
		if err := a.export.ExportStatisticsXLSX(sess.UserID(), path, from, to); err != nil {
			return err
		}
		return a.print(map[string]string{"path": path})
	}

	n, err := a.export.ExportEntries(sess, services.ExportFormat(*format), path, *filter)
	if err != nil {
		return err
	}
	return a.print(map[string]any{"path": path, "count": n})
}

func (a *app) deleteAccount(args []string) error {
	fs, c := newFlags("delete-account")
	if err := parse(fs, args); err != nil {
		return err
	}
	sess, _, err := a.login(c)
	if err != nil {
		return err
	}
	if err := a.auth.DeleteAccount(sess); err != nil {
		return err
	}
	return a.print(map[string]string{"deleted": *c.email})
}

func optionalTimestamp(name, value string) (*models.Timestamp, error) {
	if value == "" {
		return nil, nil
	}
	ts, err := models.ParseTimestamp(value)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.WithMessage(apperrors.ErrInvalidQuery, fmt.Sprintf("%s %q is not a valid timestamp", name, value)), err)
	}
	return &ts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
