package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ai-butler-be/internal/constant"
	"ai-butler-be/pkg/assistant/router"
	"ai-butler-be/pkg/assistant/session"
	"ai-butler-be/pkg/llm"
)

const (
	lookupPreviewLen = 160
	inboxLimit       = 5
)

const newsDigestPrompt = `Summarize these headlines into a short spoken-style news briefing. Two or three sentences, no preamble.

%s`

func (s *assistantService) registerCommands() {
	s.router.Register(router.Command{
		Name:        "help",
		Usage:       "/help",
		Description: "List every available command.",
		Handler:     s.cmdHelp,
	})
	s.router.Register(router.Command{
		Name:        "reset",
		Usage:       "/reset",
		Description: "Clear the conversation, drafts and loaded text.",
		Handler:     s.cmdReset,
	})
	s.router.Register(router.Command{
		Name:        "store",
		Usage:       "/store [tag]",
		Description: "Persist the active text or the last exchange to the document store.",
		Handler:     s.cmdStore,
	})
	s.router.Register(router.Command{
		Name:        "lookup",
		Usage:       "/lookup <tag> <query> | /lookup load <n>",
		Description: "Search stored documents by tag, then load a staged result by position.",
		Handler:     s.cmdLookup,
	})
	s.router.Register(router.Command{
		Name:        "news",
		Usage:       "/news [topic]",
		Description: "Fetch headlines and summarize them.",
		Handler:     s.cmdNews,
	})
	s.router.Register(router.Command{
		Name:        "search",
		Usage:       "/search <query>",
		Description: "Web search, returns titles and links.",
		Handler:     s.cmdSearch,
	})
	s.router.Register(router.Command{
		Name:        "visit",
		Usage:       "/visit <url>",
		Description: "Fetch a page and load its text as the active reference.",
		Handler:     s.cmdVisit,
	})
	s.router.Register(router.Command{
		Name:        "wiki",
		Usage:       "/wiki <topic>",
		Description: "Encyclopedia summary for a topic.",
		Handler:     s.cmdWiki,
	})
	s.router.Register(router.Command{
		Name:        "papers",
		Usage:       "/papers <topic>",
		Description: "Search academic papers.",
		Handler:     s.cmdPapers,
	})
	s.router.Register(router.Command{
		Name:        "note",
		Usage:       "/note add|edit|del|list|clean",
		Description: "Manage the durable note log.",
		Handler:     s.cmdNote,
	})
	s.router.Register(router.Command{
		Name:        "doc",
		Usage:       "/doc new|write|save|list|load",
		Description: "Work on a draft document and save it.",
		Handler:     s.cmdDoc,
	})
	s.router.Register(router.Command{
		Name:        "gmail",
		Usage:       "/gmail inbox|unread|starred|view|markread|star|draft|editdraft|send",
		Description: "Read mail and send drafted emails.",
		Handler:     s.cmdGmail,
	})
	s.router.Register(router.Command{
		Name:        "calendar",
		Usage:       "/calendar events|draft|create",
		Description: "List events and create drafted ones.",
		Handler:     s.cmdCalendar,
	})
	s.router.Register(router.Command{
		Name:        "rebuild",
		Usage:       "/rebuild",
		Description: "Clear and repopulate the semantic store from durable sources.",
		Handler:     s.cmdRebuild,
	})
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func (s *assistantService) cmdHelp(_ context.Context, _ *session.Session, _ []string) ([]string, error) {
	lines := []string{"Available commands:"}
	for _, cmd := range s.router.Commands() {
		lines = append(lines, fmt.Sprintf("%s — %s", cmd.Usage, cmd.Description))
	}
	return []string{strings.Join(lines, "\n")}, nil
}

func (s *assistantService) cmdReset(_ context.Context, sess *session.Session, _ []string) ([]string, error) {
	sess.Reset()
	return []string{"Session cleared. We start fresh."}, nil
}

func (s *assistantService) cmdStore(ctx context.Context, sess *session.Session, args []string) ([]string, error) {
	tag := joinArgs(args)

	// A tag stores the last exchange under that label; without one the
	// loaded reference text is stored instead.
	if tag != "" {
		user := sess.LastUserMessage()
		assistant := sess.LastAssistantMessage()
		if user == "" || assistant == "" {
			return nil, fmt.Errorf("no recent exchange to store")
		}
		text := "User: " + user + "\nAssistant: " + assistant
		if err := s.deps.DocumentService.StoreText(ctx, tag, sess.ID, "exchange", text, nil); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Stored the last exchange under tag %q.", tag)}, nil
	}

	if strings.TrimSpace(sess.ActiveText) == "" {
		return nil, fmt.Errorf("nothing to store yet")
	}
	if err := s.deps.DocumentService.StoreText(ctx, constant.DocTagConversation, sess.ID, "active-text", sess.ActiveText, nil); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("Stored the active text under tag %q.", constant.DocTagConversation)}, nil
}

func (s *assistantService) cmdLookup(ctx context.Context, sess *session.Session, args []string) ([]string, error) {
	if len(args) < 2 {
		return []string{"Usage: /lookup <tag> <query>, then /lookup load <n>."}, nil
	}

	if strings.EqualFold(args[0], "load") {
		if sess.LastLookup == nil {
			return nil, fmt.Errorf("no staged lookup results")
		}
		n, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil || n < 1 || n > len(sess.LastLookup.Results) {
			return nil, fmt.Errorf("pick a result between 1 and %d", len(sess.LastLookup.Results))
		}
		result := sess.LastLookup.Results[n-1]
		sess.SetActiveText(result.Text)
		return []string{fmt.Sprintf("Loaded result %d (%s) into the active text.", n, result.Filename)}, nil
	}

	tag, query := args[0], args[1]
	matches, err := s.deps.DocumentService.Lookup(ctx, tag, query, s.deps.NoteTopK)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		sess.InvalidateLookup()
		return []string{fmt.Sprintf("Nothing stored under tag %q matches %q.", tag, query)}, nil
	}

	state := &session.LookupState{Tag: tag, Query: query}
	lines := []string{fmt.Sprintf("Found %d result(s) for %q:", len(matches), query)}
	for i, m := range matches {
		state.Results = append(state.Results, session.LookupResult{
			Text:     m.Document,
			Tag:      m.Tag,
			Filename: m.Filename,
		})
		preview := m.Document
		if len(preview) > lookupPreviewLen {
			preview = preview[:lookupPreviewLen] + "…"
		}
		lines = append(lines, fmt.Sprintf("%d. [%s] %s", i+1, m.Filename, preview))
	}
	lines = append(lines, "Use /lookup load <n> to load one into the active text.")
	sess.LastLookup = state

	return []string{strings.Join(lines, "\n")}, nil
}

func (s *assistantService) cmdNews(ctx context.Context, _ *session.Session, args []string) ([]string, error) {
	topic := joinArgs(args)
	if topic == "" {
		topic = "top stories"
	}

	items, err := s.deps.Web.News(ctx, topic)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []string{fmt.Sprintf("No headlines found for %q.", topic)}, nil
	}

	var headlines strings.Builder
	for _, item := range items {
		fmt.Fprintf(&headlines, "- %s\n", item.Title)
	}

	digest, err := s.deps.ChatProvider.Generate(ctx, fmt.Sprintf(newsDigestPrompt, headlines.String()), llm.WithTemperature(0.3))
	if err != nil {
		// Headlines are still worth showing when the summary fails.
		return []string{"Headlines:\n" + headlines.String()}, nil
	}

	lines := []string{digest, ""}
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %s (%s)", item.Title, item.Link))
	}
	return []string{strings.Join(lines, "\n")}, nil
}

func (s *assistantService) cmdSearch(ctx context.Context, _ *session.Session, args []string) ([]string, error) {
	query := joinArgs(args)
	if query == "" {
		return []string{"Usage: /search <query>."}, nil
	}

	results, err := s.deps.Web.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []string{fmt.Sprintf("No results for %q.", query)}, nil
	}

	lines := []string{fmt.Sprintf("Results for %q:", query)}
	for i, r := range results {
		lines = append(lines, fmt.Sprintf("%d. %s\n   %s\n   %s", i+1, r.Title, r.Summary, r.Link))
	}
	return []string{strings.Join(lines, "\n")}, nil
}

func (s *assistantService) cmdVisit(ctx context.Context, sess *session.Session, args []string) ([]string, error) {
	pageURL := joinArgs(args)
	if pageURL == "" {
		return []string{"Usage: /visit <url>."}, nil
	}

	text, err := s.deps.Web.Visit(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	sess.SetActiveText(text)
	return []string{fmt.Sprintf("Loaded %s into the active text (%d characters).", pageURL, len(sess.ActiveText))}, nil
}

func (s *assistantService) cmdWiki(ctx context.Context, _ *session.Session, args []string) ([]string, error) {
	topic := joinArgs(args)
	if topic == "" {
		return []string{"Usage: /wiki <topic>."}, nil
	}

	result, err := s.deps.Web.Wiki(ctx, topic)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("%s\n%s\n%s", result.Title, result.Summary, result.URL)}, nil
}

func (s *assistantService) cmdPapers(ctx context.Context, _ *session.Session, args []string) ([]string, error) {
	topic := joinArgs(args)
	if topic == "" {
		return []string{"Usage: /papers <topic>."}, nil
	}

	papers, err := s.deps.Web.Papers(ctx, topic)
	if err != nil {
		return nil, err
	}
	if len(papers) == 0 {
		return []string{fmt.Sprintf("No papers found for %q.", topic)}, nil
	}

	lines := []string{fmt.Sprintf("Papers on %q:", topic)}
	for i, p := range papers {
		lines = append(lines, fmt.Sprintf("%d. %s (%s, %d, %d citations)\n   %s", i+1, p.Title, p.Authors, p.Year, p.Citations, p.URL))
	}
	return []string{strings.Join(lines, "\n")}, nil
}

func (s *assistantService) cmdNote(ctx context.Context, _ *session.Session, args []string) ([]string, error) {
	if len(args) == 0 {
		return []string{"Usage: /note add|edit|del|list|clean."}, nil
	}
	sub := strings.ToLower(args[0])
	rest := ""
	if len(args) > 1 {
		rest = args[1]
	}

	switch sub {
	case "add":
		if strings.TrimSpace(rest) == "" {
			return []string{"Usage: /note add <content>."}, nil
		}
		pos, err := s.deps.NoteService.Add(ctx, rest)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Noted (#%d).", pos)}, nil

	case "list":
		notes, err := s.deps.NoteService.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(notes) == 0 {
			return []string{"No notes yet."}, nil
		}
		lines := make([]string, 0, len(notes))
		for i, n := range notes {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, n.Content))
		}
		return []string{strings.Join(lines, "\n")}, nil

	case "edit":
		parts := strings.SplitN(strings.TrimSpace(rest), " ", 2)
		if len(parts) < 2 {
			return []string{"Usage: /note edit <n> <new content>."}, nil
		}
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return []string{"Usage: /note edit <n> <new content>."}, nil
		}
		if err := s.deps.NoteService.Edit(ctx, n, parts[1]); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Note %d updated.", n)}, nil

	case "del":
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return []string{"Usage: /note del <n>."}, nil
		}
		if err := s.deps.NoteService.Delete(ctx, n); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Note %d deleted.", n)}, nil

	case "clean":
		before, after, err := s.deps.NoteService.Clean(ctx)
		if err != nil {
			return nil, err
		}
		if before == 0 {
			return []string{"No notes to clean."}, nil
		}
		return []string{fmt.Sprintf("Cleaned notes: %d before, %d after.", before, after)}, nil

	default:
		return []string{"Usage: /note add|edit|del|list|clean."}, nil
	}
}

func (s *assistantService) cmdDoc(ctx context.Context, sess *session.Session, args []string) ([]string, error) {
	if len(args) == 0 {
		return []string{"Usage: /doc new|write|save|list|load."}, nil
	}
	sub := strings.ToLower(args[0])
	rest := ""
	if len(args) > 1 {
		rest = args[1]
	}

	switch sub {
	case "new":
		filename := strings.TrimSpace(rest)
		if filename == "" {
			return []string{"Usage: /doc new <filename>."}, nil
		}
		sess.DraftDocument = &session.DraftDocument{Filename: filename}
		return []string{fmt.Sprintf("Started working document %q.", filename)}, nil

	case "write":
		if sess.DraftDocument == nil {
			return nil, fmt.Errorf("no working document, start one with /doc new")
		}
		sess.DraftDocument.Content = rest
		return []string{fmt.Sprintf("Wrote %d characters to %q.", len(rest), sess.DraftDocument.Filename)}, nil

	case "save":
		if sess.DraftDocument == nil {
			return nil, fmt.Errorf("no working document, start one with /doc new")
		}
		if err := s.deps.DocumentService.SaveWorkingDoc(ctx, sess.DraftDocument.Filename, sess.DraftDocument.Content); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Saved %q.", sess.DraftDocument.Filename)}, nil

	case "list":
		names, err := s.deps.DocumentService.ListDocuments(ctx)
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return []string{"No saved documents."}, nil
		}
		return []string{"Saved documents:\n- " + strings.Join(names, "\n- ")}, nil

	case "load":
		filename := strings.TrimSpace(rest)
		if filename == "" {
			return []string{"Usage: /doc load <filename>."}, nil
		}
		content, err := s.deps.DocumentService.LoadDocument(ctx, filename)
		if err != nil {
			return nil, err
		}
		sess.DraftDocument = &session.DraftDocument{Filename: filename, Content: content}
		return []string{fmt.Sprintf("Loaded %q (%d characters).", filename, len(content))}, nil

	default:
		return []string{"Usage: /doc new|write|save|list|load."}, nil
	}
}

func (s *assistantService) cmdGmail(ctx context.Context, sess *session.Session, args []string) ([]string, error) {
	if len(args) == 0 {
		return []string{"Usage: /gmail inbox|unread|starred|view|markread|star|draft|editdraft|send."}, nil
	}
	sub := strings.ToLower(args[0])
	rest := ""
	if len(args) > 1 {
		rest = args[1]
	}

	switch sub {
	case "inbox", "unread", "starred":
		query := map[string]string{
			"inbox":   "in:inbox",
			"unread":  "is:unread",
			"starred": "is:starred",
		}[sub]
		emails, err := s.deps.MailService.Inbox(ctx, query, inboxLimit)
		if err != nil {
			return nil, err
		}
		if len(emails) == 0 {
			return []string{"No matching emails."}, nil
		}
		lines := make([]string, 0, len(emails))
		for i, e := range emails {
			lines = append(lines, fmt.Sprintf("%d. %s — %s (id %s)\n   %s", i+1, e.From, e.Subject, e.ID, e.Snippet))
		}
		return []string{strings.Join(lines, "\n")}, nil

	case "view":
		id := strings.TrimSpace(rest)
		if id == "" {
			return []string{"Usage: /gmail view <id>."}, nil
		}
		email, err := s.deps.MailService.View(ctx, id)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("From: %s\nSubject: %s\n\n%s", email.From, email.Subject, email.Body)}, nil

	case "markread":
		id := strings.TrimSpace(rest)
		if id == "" {
			return []string{"Usage: /gmail markread <id>."}, nil
		}
		if err := s.deps.MailService.MarkRead(ctx, id); err != nil {
			return nil, err
		}
		return []string{"Marked as read."}, nil

	case "star":
		id := strings.TrimSpace(rest)
		if id == "" {
			return []string{"Usage: /gmail star <id>."}, nil
		}
		if err := s.deps.MailService.Star(ctx, id); err != nil {
			return nil, err
		}
		return []string{"Starred."}, nil

	case "draft":
		a := router.ParseDraftArgs(rest, "to", "cc", "subject")
		to := a.Primary
		if v := a.Field("to"); v != "" {
			to = v
		}
		if to == "" {
			return []string{"Usage: /gmail draft <to> | subject: ... | <body>."}, nil
		}
		sess.DraftEmail = &session.DraftEmail{
			To:      to,
			CC:      router.SplitList(a.Field("cc")),
			Subject: a.Field("subject"),
			Body:    a.Body,
		}
		return []string{renderEmailDraft(sess.DraftEmail)}, nil

	case "editdraft":
		if sess.DraftEmail == nil {
			return nil, fmt.Errorf("no email draft, start one with /gmail draft")
		}
		a := router.ParseDraftArgs(rest, "to", "cc", "subject")
		if v := a.Field("to"); v != "" {
			sess.DraftEmail.To = v
		} else if a.Primary != "" {
			sess.DraftEmail.To = a.Primary
		}
		if v := a.Field("cc"); v != "" {
			sess.DraftEmail.CC = router.SplitList(v)
		}
		if v := a.Field("subject"); v != "" {
			sess.DraftEmail.Subject = v
		}
		if a.Body != "" {
			sess.DraftEmail.Body = a.Body
		}
		return []string{renderEmailDraft(sess.DraftEmail)}, nil

	case "send":
		if sess.DraftEmail == nil {
			return nil, fmt.Errorf("no email draft to send, start one with /gmail draft")
		}
		if err := s.deps.MailService.Send(ctx, sess.DraftEmail); err != nil {
			return nil, err
		}
		to := sess.DraftEmail.To
		sess.DraftEmail = nil
		return []string{fmt.Sprintf("Email sent to %s.", to)}, nil

	default:
		return []string{"Usage: /gmail inbox|unread|starred|view|markread|star|draft|editdraft|send."}, nil
	}
}

func renderEmailDraft(d *session.DraftEmail) string {
	lines := []string{"Email draft:", "To: " + d.To}
	if len(d.CC) > 0 {
		lines = append(lines, "Cc: "+strings.Join(d.CC, ", "))
	}
	lines = append(lines, "Subject: "+d.Subject, "", d.Body, "", "Send it with /gmail send.")
	return strings.Join(lines, "\n")
}

func (s *assistantService) cmdCalendar(ctx context.Context, sess *session.Session, args []string) ([]string, error) {
	if len(args) == 0 {
		return []string{"Usage: /calendar events|draft|create."}, nil
	}
	sub := strings.ToLower(args[0])
	rest := ""
	if len(args) > 1 {
		rest = args[1]
	}

	switch sub {
	case "events":
		start := time.Now().Format("2006-01-02")
		end := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
		if fields := strings.Fields(rest); len(fields) == 2 {
			start, end = fields[0], fields[1]
		}
		events, err := s.deps.CalendarService.EventsBetween(ctx, start, end)
		if err != nil {
			return nil, err
		}
		if len(events) == 0 {
			return []string{fmt.Sprintf("No events between %s and %s.", start, end)}, nil
		}
		lines := []string{fmt.Sprintf("Events between %s and %s:", start, end)}
		for _, e := range events {
			lines = append(lines, fmt.Sprintf("- %s (%s → %s)", e.Summary, e.Start, e.End))
		}
		return []string{strings.Join(lines, "\n")}, nil

	case "draft":
		parts := strings.Split(rest, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return []string{"Usage: /calendar draft <summary> | <start> | <end> [| attendees [| description]]."}, nil
		}
		draft := &session.DraftEvent{
			Summary: parts[0],
			Start:   parts[1],
			End:     parts[2],
		}
		if len(parts) > 3 {
			draft.Attendees = router.SplitList(parts[3])
		}
		if len(parts) > 4 {
			draft.Description = parts[4]
		}
		sess.DraftEvent = draft
		return []string{fmt.Sprintf("Event draft: %s from %s to %s. Create it with /calendar create.", draft.Summary, draft.Start, draft.End)}, nil

	case "create":
		if sess.DraftEvent == nil {
			return nil, fmt.Errorf("no event draft, start one with /calendar draft")
		}
		created, err := s.deps.CalendarService.Create(ctx, sess.DraftEvent)
		if err != nil {
			return nil, err
		}
		sess.DraftEvent = nil
		reply := fmt.Sprintf("Event %q created (%s → %s).", created.Summary, created.Start, created.End)
		if created.Link != "" {
			reply += "\n" + created.Link
		}
		return []string{reply}, nil

	default:
		return []string{"Usage: /calendar events|draft|create."}, nil
	}
}

func (s *assistantService) cmdRebuild(ctx context.Context, _ *session.Session, _ []string) ([]string, error) {
	docs, notes, err := s.deps.DocumentService.Rebuild(ctx)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("Rebuilt the semantic store: %d documents, %d notes re-indexed.", docs, notes)}, nil
}
