package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/client"
	"github.com/matheus3301/classnotes/internal/forms"
	"github.com/matheus3301/classnotes/internal/session"
	"github.com/matheus3301/classnotes/internal/share"
	"github.com/matheus3301/classnotes/internal/stores"
)

// connect dials the session's daemon, resumes saved credentials and
// returns initialized stores.
func connect(ctx context.Context, e *env) (*client.Client, *stores.Stores) {
	target := session.DaemonTarget(e.cfg, e.session)
	c, err := client.Connect(ctx, e.session, target)
	if err != nil {
		fail(fmt.Errorf("cannot connect to daemon for session %q: %w", e.session, err))
	}
	st := stores.New(c, c, bus.New(), e.logger)
	st.Auth.Initialize(ctx)
	return c, st
}

func requireSignedIn(st *stores.Stores) {
	if st.Auth.User() == nil {
		fail(fmt.Errorf("%w: run classnotesctl signin", stores.ErrNotAuthenticated))
	}
}

func cmdAuth(ctx context.Context, e *env, name string, args []string) {
	c, st := connect(ctx, e)
	defer func() { _ = c.Close() }()

	switch name {
	case "signup":
		need(args, 3, "signup <email> <password> <username>")
		form := forms.Register{Username: args[2], Email: args[0], Password: args[1], RepeatPassword: args[1]}
		if err := forms.Validate(&form); err != nil {
			fail(err)
		}
		if err := st.Auth.SignUp(ctx, form.Email, form.Password, form.Username); err != nil {
			fail(err)
		}
		if err := client.SaveCredentials(e.session, c); err != nil {
			fail(err)
		}
		printUser(e, st.Auth.User())
	case "signin":
		need(args, 2, "signin <email> <password>")
		form := forms.Login{Email: args[0], Password: args[1]}
		if err := forms.Validate(&form); err != nil {
			fail(err)
		}
		if err := st.Auth.SignIn(ctx, form.Email, form.Password); err != nil {
			fail(err)
		}
		if err := client.SaveCredentials(e.session, c); err != nil {
			fail(err)
		}
		printUser(e, st.Auth.User())
	case "signout":
		if err := st.Auth.SignOut(ctx); err != nil {
			fail(err)
		}
		if err := client.ForgetCredentials(e.session); err != nil {
			fail(err)
		}
		fmt.Println("Signed out.")
	case "whoami":
		u := st.Auth.User()
		if u == nil {
			if e.jsonOut {
				outputJSON(nil)
				return
			}
			fmt.Println("Not signed in.")
			return
		}
		printUser(e, u)
	}
}

func printUser(e *env, u *stores.User) {
	if e.jsonOut {
		outputJSON(u)
		return
	}
	fmt.Printf("User:     %s\n", u.Username)
	fmt.Printf("Email:    %s\n", u.Email)
	fmt.Printf("ID:       %s\n", u.ID)
}

func cmdGroups(ctx context.Context, e *env, name string, args []string) {
	c, st := connect(ctx, e)
	defer func() { _ = c.Close() }()
	requireSignedIn(st)

	switch name {
	case "list":
		if err := st.Groups.FetchGroups(ctx); err != nil {
			fail(err)
		}
		printGroups(e, st.Groups.Groups())
	case "create":
		need(args, 1, "groups create <name>")
		if err := forms.Validate(&forms.Group{Name: args[0]}); err != nil {
			fail(err)
		}
		id, err := st.Groups.CreateGroup(ctx, args[0])
		if err != nil {
			fail(err)
		}
		if e.jsonOut {
			outputJSON(map[string]string{"id": id})
			return
		}
		fmt.Printf("Created group %s\n", id)
	case "rename":
		need(args, 2, "groups rename <id> <name>")
		if err := forms.Validate(&forms.Group{Name: args[1]}); err != nil {
			fail(err)
		}
		if err := st.Groups.UpdateGroup(ctx, args[0], args[1]); err != nil {
			fail(err)
		}
		fmt.Println("Group renamed.")
	case "delete":
		need(args, 1, "groups delete <id>")
		if err := st.Groups.DeleteGroup(ctx, args[0]); err != nil {
			fail(err)
		}
		fmt.Println("Group deleted.")
	case "share":
		fs := flag.NewFlagSet("groups share", flag.ExitOnError)
		pngPath := fs.String("png", "", "also write the QR code as a PNG image")
		_ = fs.Parse(args)
		need(fs.Args(), 1, "groups share [--png <file>] <id>")
		cmdShare(e, fs.Arg(0), *pngPath)
	default:
		fmt.Fprintf(os.Stderr, "unknown groups subcommand: %s\n", name)
		os.Exit(1)
	}
}

func printGroups(e *env, groups []stores.Group) {
	if e.jsonOut {
		outputJSON(groups)
		return
	}
	if len(groups) == 0 {
		fmt.Println("No groups found.")
		return
	}
	for _, g := range groups {
		fmt.Printf("%-34s %-30s %s\n", g.ID, g.Name, formatMillis(g.CreatedAt))
	}
}

func cmdShare(e *env, groupID, pngPath string) {
	link := share.Link(groupID)
	if pngPath != "" {
		img, err := share.PNG(link, 256)
		if err != nil {
			fail(err)
		}
		if err := os.WriteFile(pngPath, img, 0644); err != nil {
			fail(err)
		}
	}
	if e.jsonOut {
		outputJSON(map[string]string{"group": groupID, "link": link})
		return
	}
	qr, err := share.RenderQR(link)
	if err != nil {
		fail(err)
	}
	fmt.Printf("%s\n  %s\n", qr, link)
}

func cmdNotes(ctx context.Context, e *env, name string, args []string) {
	c, st := connect(ctx, e)
	defer func() { _ = c.Close() }()
	requireSignedIn(st)

	switch name {
	case "list":
		fs := flag.NewFlagSet("notes list", flag.ExitOnError)
		date := fs.String("date", "", "only notes created on this day (YYYY-MM-DD)")
		_ = fs.Parse(args)
		need(fs.Args(), 1, "notes list [--date YYYY-MM-DD] <group>")
		groupID := fs.Arg(0)
		if err := st.Notes.FetchNotes(ctx, groupID); err != nil {
			fail(err)
		}
		notes := st.Notes.Notes(groupID)
		if *date != "" {
			day, err := stores.ParseDay(*date)
			if err != nil {
				fail(fmt.Errorf("--date: %w", err))
			}
			notes = stores.FilterByDate(notes, day)
		}
		printNotes(e, notes)
	case "add":
		need(args, 3, "notes add <group> <title> <content>")
		if err := forms.Validate(&forms.Note{Title: args[1], Content: args[2]}); err != nil {
			fail(err)
		}
		id, err := st.Notes.CreateNote(ctx, args[0], args[1], args[2])
		if err != nil {
			fail(err)
		}
		if e.jsonOut {
			outputJSON(map[string]string{"id": id})
			return
		}
		fmt.Printf("Created note %s\n", id)
	case "edit":
		need(args, 4, "notes edit <group> <note> <title> <content>")
		if err := forms.Validate(&forms.Note{Title: args[2], Content: args[3]}); err != nil {
			fail(err)
		}
		if err := st.Notes.UpdateNote(ctx, args[0], args[1], args[2], args[3]); err != nil {
			fail(err)
		}
		fmt.Println("Note updated.")
	case "delete":
		need(args, 2, "notes delete <group> <note>")
		if err := st.Notes.DeleteNote(ctx, args[0], args[1]); err != nil {
			fail(err)
		}
		fmt.Println("Note deleted.")
	default:
		fmt.Fprintf(os.Stderr, "unknown notes subcommand: %s\n", name)
		os.Exit(1)
	}
}

func printNotes(e *env, notes []stores.Note) {
	if e.jsonOut {
		outputJSON(notes)
		return
	}
	if len(notes) == 0 {
		fmt.Println("No notes found.")
		return
	}
	for _, n := range notes {
		fmt.Printf("[%s] %s  (%s)\n", formatMillis(n.CreatedAt), n.Title, n.ID)
		fmt.Printf("    %s\n", n.Content)
	}
}

func cmdChat(ctx context.Context, e *env, name string, args []string) {
	switch name {
	case "send":
		need(args, 2, "chat send <group> <message>")
		if err := forms.Validate(&forms.Message{Content: args[1]}); err != nil {
			fail(err)
		}
		c, st := connect(ctx, e)
		defer func() { _ = c.Close() }()
		requireSignedIn(st)
		if err := st.Chat.SendMessage(ctx, args[0], args[1]); err != nil {
			fail(err)
		}
		fmt.Println("Sent.")
	default:
		fmt.Fprintf(os.Stderr, "unknown chat subcommand: %s\n", name)
		os.Exit(1)
	}
}

// cmdChatWatch prints the latest messages, then every new one until
// interrupted.
func cmdChatWatch(e *env, args []string) {
	need(args, 1, "chat watch <group>")
	groupID := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, st := connect(ctx, e)
	defer func() { _ = c.Close() }()
	requireSignedIn(st)

	feed := stores.NewChatFeed(st.Chat)
	sub, err := feed.Open(ctx, groupID)
	if err != nil {
		fail(err)
	}
	defer feed.Release(sub)

	seen := make(map[string]bool)
	updates := sub.Snapshots()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			for _, m := range feed.Messages() {
				if seen[m.ID] {
					continue
				}
				seen[m.ID] = true
				if e.jsonOut {
					outputJSON(m)
					continue
				}
				fmt.Printf("[%s] %s: %s\n", formatMillis(m.CreatedAt), m.SenderName, m.Content)
			}
		}
	}
}
