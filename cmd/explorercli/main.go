// Package main provides the explorer CLI entry point for testing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/careersinmusic/internal/api/connect"
	"github.com/osa030/careersinmusic/internal/app/explorer"
	"github.com/osa030/careersinmusic/internal/app/session/state"
	"github.com/osa030/careersinmusic/internal/domain/release"
)

var (
	app    = kingpin.New("careers-cli", "Careers in Music explorer client for testing")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").Envar("CAREERS_SERVER").String()

	// open command
	openCmd = app.Command("open", "Open a session and print its id")

	// search command
	searchCmd     = app.Command("search", "Search by album title and/or artist name")
	searchSession = searchCmd.Flag("session", "Session ID (a new session is opened when empty)").String()
	searchTitle   = searchCmd.Flag("title", "Album title").Short('t').String()
	searchArtist  = searchCmd.Flag("artist", "Artist name").Short('a').String()

	// navigate command
	navigateCmd     = app.Command("navigate", "Open a neighboring album")
	navigateSession = navigateCmd.Arg("session-id", "Session ID").Required().String()
	navigateTitle   = navigateCmd.Arg("title", "Album title").Required().String()
	navigateArtist  = navigateCmd.Arg("artist", "Artist name").Required().String()

	// view command
	viewCmd     = app.Command("view", "Show the current view of a session")
	viewSession = viewCmd.Arg("session-id", "Session ID").Required().String()

	// page command
	pageCmd     = app.Command("page", "Show one page of the discography grid")
	pageSession = pageCmd.Arg("session-id", "Session ID").Required().String()
	pageNumber  = pageCmd.Flag("page", "Page number").Default("1").Int()
	pageSize    = pageCmd.Flag("size", "Page size (6, 12, 24 or 48)").Default("12").Int()
	pageOrder   = pageCmd.Flag("order", "Sort order").Default("newest").Enum("newest", "oldest")

	// watch command
	watchCmd     = app.Command("watch", "Follow every event applied to a session")
	watchSession = watchCmd.Arg("session-id", "Session ID").Required().String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	client := apiconnect.NewDefaultExplorerClient(*server)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case openCmd.FullCommand():
		err = open(ctx, client)
	case searchCmd.FullCommand():
		err = search(ctx, client, *searchSession, *searchTitle, *searchArtist)
	case navigateCmd.FullCommand():
		err = client.Navigate(ctx, &apiconnect.NavigateRequest{
			SessionID: *navigateSession,
			Title:     *navigateTitle,
			Artist:    *navigateArtist,
		}, printEvent)
	case viewCmd.FullCommand():
		err = view(ctx, client, *viewSession)
	case pageCmd.FullCommand():
		err = page(ctx, client, *pageSession, *pageNumber, *pageSize, *pageOrder)
	case watchCmd.FullCommand():
		fmt.Println("Watching session. Press Ctrl+C to exit.")
		err = client.Watch(ctx, *watchSession, printEvent)
		if ctx.Err() != nil {
			err = nil
		}
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func open(ctx context.Context, client *apiconnect.ExplorerClient) error {
	id, err := client.OpenSession(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Session opened! Your session ID: %s\n", id)
	return nil
}

func search(ctx context.Context, client *apiconnect.ExplorerClient, sessionID, title, artist string) error {
	if sessionID == "" {
		id, err := client.OpenSession(ctx)
		if err != nil {
			return err
		}
		sessionID = id
		fmt.Printf("Session: %s\n", sessionID)
	}
	return client.Search(ctx, &apiconnect.SearchRequest{
		SessionID: sessionID,
		Title:     title,
		Artist:    artist,
	}, printEvent)
}

func view(ctx context.Context, client *apiconnect.ExplorerClient, sessionID string) error {
	res, err := client.GetView(ctx, sessionID)
	if err != nil {
		return err
	}
	v := res.View

	fmt.Printf("Token: %d  Kind: %s  Phase: %s\n", v.Token, v.Kind, v.Phase)
	if v.Message != "" {
		fmt.Printf("  %s\n", v.Message)
	}
	if v.Album != nil {
		fmt.Printf("\n%s - %s (%s)\n", v.Album.Title, v.Album.Artist, v.Album.DisplayDate)
		if v.CoverArtURL != "" {
			fmt.Printf("  Cover: %s\n", v.CoverArtURL)
		}
		if v.AlbumLink != "" {
			fmt.Printf("  Spotify: %s\n", v.AlbumLink)
		}
	}
	if v.Player != nil {
		fmt.Printf("  Player: %s %s\n", v.Player.Mode, v.Player.EmbedURL)
	}
	for _, n := range v.Neighbors {
		fmt.Printf("\n  %s", n.Contributor.Name)
		if n.Contributor.RoleName != "" {
			fmt.Printf(" (%s)", n.Contributor.RoleName)
		}
		fmt.Println()
		if n.Previous != nil {
			fmt.Printf("    <- %s\n", formatEntry(*n.Previous))
		}
		if n.Next != nil {
			fmt.Printf("    -> %s\n", formatEntry(*n.Next))
		}
	}
	if v.Discography != nil {
		fmt.Printf("\n%s: %d albums\n", v.Discography.Heading, v.Discography.Total)
	}
	return nil
}

func page(ctx context.Context, client *apiconnect.ExplorerClient, sessionID string, number, size int, order string) error {
	res, err := client.GetDiscographyPage(ctx, &apiconnect.GetDiscographyPageRequest{
		SessionID: sessionID,
		Page:      number,
		PageSize:  size,
		Order:     order,
	})
	if err != nil {
		return err
	}
	p := res.Page

	fmt.Printf("%s (page %d/%d, %d albums, %s first)\n", p.Heading, p.Page, p.Pages, p.Total, p.Order)
	for _, e := range p.Entries {
		fmt.Printf("  %s\n", formatEntry(e))
	}
	if p.Order == state.OrderNewest && p.Page < p.Pages {
		fmt.Printf("\nNext: --page %d\n", p.Page+1)
	}
	return nil
}

func printEvent(ev *explorer.Event) error {
	fmt.Printf("[%d/%d] %-17s ", ev.Token, ev.SequenceNo, ev.Type)

	switch ev.Type {
	case explorer.EventAlbumFound:
		fmt.Printf("%s - %s (%s)", ev.Album.Title, ev.Album.Artist, ev.Album.DisplayDate)
	case explorer.EventNotFound:
		fmt.Print(ev.Message)
	case explorer.EventContributors:
		names := make([]string, 0, len(ev.Contributors))
		for _, c := range ev.Contributors {
			if c.RoleName != "" {
				names = append(names, fmt.Sprintf("%s (%s)", c.Name, c.RoleName))
			} else {
				names = append(names, c.Name)
			}
		}
		fmt.Print(strings.Join(names, ", "))
	case explorer.EventPlayer:
		if ev.Player.Embeddable() {
			fmt.Printf("embed %s", ev.Player.EmbedURL)
		} else {
			fmt.Printf("link %s", ev.Player.Link)
		}
	case explorer.EventCover, explorer.EventDiscographyCover:
		fmt.Printf("%s %s", ev.Cover.ReleaseID, ev.Cover.CoverArtURL)
	case explorer.EventPreviousAlbum, explorer.EventNextAlbum:
		fmt.Printf("%s: %s", ev.Neighbor.Contributor.Name, formatEntry(ev.Neighbor.Entry))
	case explorer.EventDiscography:
		fmt.Printf("%s (%d albums)", ev.Discography.Heading, len(ev.Discography.Entries))
		for _, e := range ev.Discography.Entries {
			fmt.Printf("\n    %s", formatEntry(e))
		}
	}
	fmt.Println()
	return nil
}

func formatEntry(e release.DiscographyEntry) string {
	date := e.DisplayDate
	if date == "" {
		date = "unknown date"
	}
	return fmt.Sprintf("%s - %s (%s) %s", e.Title, e.ArtistName, date, e.SpotifyLink)
}
