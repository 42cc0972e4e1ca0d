package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/example/eventshare/internal/api"
	"github.com/example/eventshare/internal/application"
	"github.com/example/eventshare/internal/lightbox"
	"github.com/example/eventshare/internal/session"
	"github.com/example/eventshare/internal/terminal"
	"github.com/example/eventshare/internal/upload"
	"github.com/example/eventshare/internal/view"
)

type command struct {
	summary string
	args    string
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"login":          {"sign in and remember the session", "-u USERNAME [-p PASSWORD]", runLogin},
	"signup":         {"register an attendee account", "-u USERNAME -p PASSWORD -photo FILE", runSignup},
	"logout":         {"forget the session", "", runLogout},
	"whoami":         {"verify the session and show the profile", "", runWhoami},
	"albums":         {"list your albums or the albums shared with you", "", runAlbums},
	"create-album":   {"create an album", "NAME", runCreateAlbum},
	"photos":         {"list the photos of an album", "ALBUM", runPhotos},
	"upload":         {"upload photos to an album", "[-watch DIR] ALBUM [FILE|DIR...]", runUpload},
	"delete-albums":  {"delete albums", "[-y] ALBUM...", runDeleteAlbums},
	"delete-photos":  {"delete photos of an album", "[-y] ALBUM PHOTO...", runDeletePhotos},
	"share":          {"show the share links of an album", "ALBUM", runShare},
	"event":          {"open an event gallery link", "LINK", runEvent},
	"download":       {"download photos of an event gallery", "[-all] [-y] LINK [PHOTO...]", runDownload},
	"browse":         {"step through an event gallery", "LINK", runBrowse},
	"match":          {"search an album for faces in a photo", "PHOTOGRAPHER ALBUM IMAGE", runMatch},
	"update-photo":   {"replace your reference photo", "FILE", runUpdatePhoto},
	"check-password": {"unlock a password protected album", "ALBUM PASSWORD", runCheckPassword},
}

func newFlags(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func runLogin(ctx context.Context, e *env, args []string) error {
	fs := newFlags("login", io.Discard)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password; read from input when empty")
	if err := parse(fs, args); err != nil || *username == "" {
		return errUsage
	}
	term := e.terminal(false)
	if *password == "" {
		fmt.Fprint(e.out, "password: ")
		line, err := term.ReadLine()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		*password = line
	}

	sess, err := e.session.Login(ctx, e.client, *username, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "signed in as %s (%s)\n", sess.Username, sess.Role)
	if target, ok := e.session.TakePostLoginRedirect(ctx); ok {
		fmt.Fprintf(e.out, "continue at %s\n", target)
	}
	return nil
}

func runSignup(ctx context.Context, e *env, args []string) error {
	fs := newFlags("signup", io.Discard)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	photo := fs.String("photo", "", "reference photo")
	if err := parse(fs, args); err != nil || *username == "" || *password == "" || *photo == "" {
		return errUsage
	}
	f, err := os.Open(*photo)
	if err != nil {
		return err
	}
	defer f.Close()

	message, err := e.client.Signup(ctx, *username, *password, api.Upload{Name: filepath.Base(*photo), Content: f})
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, message)
	return nil
}

func runLogout(ctx context.Context, e *env, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	if err := e.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "signed out")
	return nil
}

func runWhoami(ctx context.Context, e *env, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	sess, ok := e.session.Verify(ctx, e.client)
	if !ok {
		return application.ErrNotSignedIn
	}
	fmt.Fprintf(e.out, "%s (%s)\n", sess.Username, sess.Role)
	if sess.RefPhotoURL != "" {
		fmt.Fprintf(e.out, "reference photo: %s\n", sess.RefPhotoURL)
	}
	if e.storage != nil {
		if since, err := e.storage.UpdatedAt(ctx, session.KeyToken); err == nil {
			fmt.Fprintf(e.out, "signed in %s\n", humanize.Time(since))
		}
	}
	return nil
}

type albumPage struct {
	manager *application.AlbumManager
	term    *terminal.Terminal
	albums  *terminal.List
	photos  *terminal.List
}

func newAlbumPage(e *env, assumeYes bool) *albumPage {
	term := e.terminal(assumeYes)
	p := &albumPage{term: term, albums: term.NewList(), photos: term.NewList()}
	p.manager = application.NewAlbumManager(application.AlbumManagerDeps{
		Gateway:      e.client,
		Session:      e.session,
		Views:        view.NewSwitcher(term.Panes(view.Loading, view.Login, view.ManageAlbums, view.AlbumDetail)),
		Albums:       p.albums,
		Photos:       p.photos,
		AlbumToolbar: term,
		PhotoToolbar: term,
		Lightbox:     term,
		Scroller:     term,
		Notifier:     term,
		Confirmer:    term,
		Navigator:    term,
		Progress:     term,
		Share:        term,
		Chrome:       term,
		Header:       term,
		Logger:       e.logger,
	})
	return p
}

func (p *albumPage) init(ctx context.Context) error {
	ok, err := p.manager.Init(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: run eventshare login first", application.ErrNotSignedIn)
	}
	return nil
}

func (p *albumPage) open(ctx context.Context, albumID string) error {
	if err := p.init(ctx); err != nil {
		return err
	}
	return p.manager.OpenAlbum(ctx, albumID)
}

func runAlbums(ctx context.Context, e *env, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	return newAlbumPage(e, false).init(ctx)
}

func runCreateAlbum(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	page := newAlbumPage(e, false)
	if err := page.init(ctx); err != nil {
		return err
	}
	_, err := page.manager.CreateAlbum(ctx, strings.Join(args, " "))
	return err
}

func runPhotos(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return newAlbumPage(e, false).open(ctx, args[0])
}

func runUpload(ctx context.Context, e *env, args []string) error {
	fs := newFlags("upload", io.Discard)
	watch := fs.String("watch", "", "keep uploading images dropped into DIR")
	if err := parse(fs, args); err != nil || fs.NArg() == 0 {
		return errUsage
	}
	if *watch == "" && fs.NArg() < 2 {
		return errUsage
	}

	page := newAlbumPage(e, false)
	if err := page.open(ctx, fs.Arg(0)); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		files, err := upload.Files(fs.Args()[1:])
		if err != nil {
			return err
		}
		if _, err := page.manager.UploadPhotos(ctx, files); err != nil {
			return err
		}
	}
	if *watch == "" {
		return nil
	}

	fmt.Fprintf(e.out, "watching %s, press Ctrl+C to stop\n", *watch)
	return upload.Watch(ctx, *watch, func(ctx context.Context, files []application.UploadFile) error {
		_, err := page.manager.UploadPhotos(ctx, files)
		return err
	}, upload.WatchOptions{Logger: e.logger})
}

func deleteFlags(name string, args []string) (*flag.FlagSet, bool, error) {
	fs := newFlags(name, io.Discard)
	yes := fs.Bool("y", false, "do not ask for confirmation")
	if err := parse(fs, args); err != nil {
		return nil, false, err
	}
	return fs, *yes, nil
}

func runDeleteAlbums(ctx context.Context, e *env, args []string) error {
	fs, yes, err := deleteFlags("delete-albums", args)
	if err != nil || fs.NArg() == 0 {
		return errUsage
	}
	page := newAlbumPage(e, yes)
	if err := page.init(ctx); err != nil {
		return err
	}
	if _, err := page.manager.ToggleAlbumSelectMode(); err != nil {
		return err
	}
	for _, id := range fs.Args() {
		page.manager.ToggleAlbum(id)
	}
	_, err = page.manager.DeleteSelectedAlbums(ctx)
	return err
}

func runDeletePhotos(ctx context.Context, e *env, args []string) error {
	fs, yes, err := deleteFlags("delete-photos", args)
	if err != nil || fs.NArg() < 2 {
		return errUsage
	}
	page := newAlbumPage(e, yes)
	if err := page.open(ctx, fs.Arg(0)); err != nil {
		return err
	}
	if _, err := page.manager.TogglePhotoSelectMode(); err != nil {
		return err
	}
	for _, id := range fs.Args()[1:] {
		page.manager.TogglePhoto(id)
	}
	_, err = page.manager.DeleteSelectedPhotos(ctx)
	return err
}

func runShare(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	page := newAlbumPage(e, false)
	if err := page.init(ctx); err != nil {
		return err
	}
	return page.manager.ShareAlbum(ctx, args[0])
}

type eventPage struct {
	gallery *application.EventGallery
	term    *terminal.Terminal
	photos  *terminal.List
}

func newEventPage(e *env, assumeYes bool) *eventPage {
	term := e.terminal(assumeYes)
	p := &eventPage{term: term, photos: term.NewList()}
	p.gallery = application.NewEventGallery(application.EventGalleryDeps{
		Gateway:   e.client,
		Session:   e.session,
		Views:     view.NewSwitcher(term.Panes(view.Loading, view.Guest, view.Gallery)),
		Loading:   term,
		Gallery:   term,
		Photos:    p.photos,
		Lightbox:  term,
		Scroller:  term,
		Notifier:  term,
		Confirmer: term,
		Navigator: term,
		Saver:     term,
		Logger:    e.logger,
	})
	return p
}

// init opens the gallery and reports whether it ended in the gallery view.
func (p *eventPage) init(ctx context.Context, raw string) error {
	link, err := application.ParseEventLink(raw)
	if err != nil {
		return err
	}
	if err := p.gallery.Init(ctx, link); err != nil {
		return err
	}
	if p.term.CurrentPane() == view.Guest {
		return fmt.Errorf("%w: this VIP link needs an account, run eventshare login or signup", application.ErrNotSignedIn)
	}
	return nil
}

func runEvent(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return newEventPage(e, false).init(ctx, args[0])
}

func runDownload(ctx context.Context, e *env, args []string) error {
	fs := newFlags("download", io.Discard)
	all := fs.Bool("all", false, "download every photo as one ZIP archive")
	yes := fs.Bool("y", false, "do not ask for confirmation")
	if err := parse(fs, args); err != nil || fs.NArg() == 0 || (*all == (fs.NArg() > 1)) {
		return errUsage
	}

	page := newEventPage(e, *yes)
	if err := page.init(ctx, fs.Arg(0)); err != nil {
		return err
	}
	if *all {
		_, err := page.gallery.DownloadAll(ctx)
		return err
	}
	var errs []error
	for _, id := range fs.Args()[1:] {
		if _, err := page.gallery.DownloadPhoto(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

const browseHelp = "enter a number to open a photo; n next, p previous, d download, q close, x exit"

func runBrowse(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	page := newEventPage(e, false)
	if err := page.init(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(e.out, browseHelp)

	box := page.gallery.Lightbox()
	for {
		line, err := page.term.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch line {
		case "":
		case "n":
			box.HandleKey(lightbox.KeyArrowRight)
		case "p":
			box.HandleKey(lightbox.KeyArrowLeft)
		case "q":
			box.HandleKey(lightbox.KeyEscape)
		case "d":
			if _, err := page.gallery.DownloadCurrent(ctx); errors.Is(err, application.ErrNotFound) {
				fmt.Fprintln(e.out, "open a photo first")
			}
		case "x":
			return nil
		default:
			n, err := strconv.Atoi(line)
			if err != nil {
				fmt.Fprintln(e.out, browseHelp)
				continue
			}
			if err := page.photos.Activate(ctx, n); err != nil {
				fmt.Fprintln(e.out, err)
			}
		}
	}
}

func runMatch(ctx context.Context, e *env, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	f, err := os.Open(args[2])
	if err != nil {
		return err
	}
	defer f.Close()

	matches, err := e.client.FindSimilarFaces(ctx, api.EmbeddingFile(args[0], args[1]), api.Upload{Name: filepath.Base(args[2]), Content: f})
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Fprintln(e.out, "no matching photos")
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(e.out, "%.2f  %s\n", m.Score, m.URL)
	}
	return nil
}

func runUpdatePhoto(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if err := e.client.UpdateReferencePhoto(ctx, api.Upload{Name: filepath.Base(args[0]), Content: f}); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "reference photo updated")
	return nil
}

func runCheckPassword(ctx context.Context, e *env, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	if err := e.client.CheckAlbumPassword(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "album unlocked")
	return nil
}
