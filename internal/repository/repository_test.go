package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ptitsvieux/backend/internal/database"
	"github.com/ptitsvieux/backend/internal/model"
)

type fixture struct {
	users    *UserRepo
	annonces *AnnonceRepo
	messages *MessageRepo
	notes    *NoteRepo
	stories  *StoryRepo
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return fixture{
		users:    NewUserRepo(db),
		annonces: NewAnnonceRepo(db),
		messages: NewMessageRepo(db),
		notes:    NewNoteRepo(db, database.SQLite),
		stories:  NewStoryRepo(db),
	}
}

func (f fixture) user(t *testing.T, name string) model.User {
	t.Helper()
	u := model.User{Name: name, Email: name + "@example.com", PasswordHash: "x"}
	if err := f.users.Create(context.Background(), &u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func TestUserCreateNormalizesAndRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := model.User{Name: "Jeanne", Email: " Jeanne@Example.COM ", PasswordHash: "x"}
	if err := f.users.Create(ctx, &u); err != nil {
		t.Fatal(err)
	}
	if u.Email != "jeanne@example.com" || u.Role != model.RoleUser || u.ID == 0 {
		t.Errorf("created = %+v", u)
	}
	dup := model.User{Name: "Autre", Email: "JEANNE@example.com", PasswordHash: "y"}
	if err := f.users.Create(ctx, &dup); !errors.Is(err, ErrEmailExists) {
		t.Errorf("duplicate err = %v", err)
	}
	got, err := f.users.GetByEmail(ctx, "jeanne@EXAMPLE.com")
	if err != nil || got.ID != u.ID {
		t.Errorf("GetByEmail = %+v, %v", got, err)
	}
	if _, err := f.users.GetByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user err = %v", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ann := model.Annonce{UserID: a.ID, Title: "Vélo", Description: "Vélo de ville bleu"}
	if err := f.annonces.Create(ctx, &ann); err != nil {
		t.Fatal(err)
	}
	f.messages.Create(ctx, &model.Message{SenderID: a.ID, RecipientID: b.ID, Content: "Bonjour"})
	f.notes.Upsert(ctx, model.Note{AuthorID: b.ID, RatedID: a.ID, Stars: 4})

	if err := f.users.Delete(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.annonces.GetByID(ctx, ann.ID); !errors.Is(err, ErrAnnonceNotFound) {
		t.Errorf("annonce survived: %v", err)
	}
	if convs, _ := f.messages.Conversations(ctx, b.ID); len(convs) != 0 {
		t.Errorf("conversations survived: %v", convs)
	}
	if s, _ := f.notes.Summary(ctx, a.ID); s.Count != 0 {
		t.Errorf("notes survived: %+v", s)
	}
	if err := f.users.Delete(ctx, a.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestAnnonceSearchEscapesWildcards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "vendeur")
	for _, title := range []string{"Remise 100% garantie", "Table_basse en chêne", "Lampe ancienne"} {
		a := model.Annonce{UserID: u.ID, Title: title, Description: "Très bon état général", Location: "Rennes"}
		if err := f.annonces.Create(ctx, &a); err != nil {
			t.Fatal(err)
		}
	}
	cases := map[string]int{
		"":         3,
		"%":        1,
		"_":        1,
		"LAMPE":    1,
		"rennes":   3,
		"100!":     0,
		"inconnue": 0,
	}
	for term, want := range cases {
		got, err := f.annonces.Search(ctx, term)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != want {
			t.Errorf("Search(%q) = %d results, want %d", term, len(got), want)
		}
	}
	all, _ := f.annonces.Search(ctx, "")
	if all[0].Title != "Lampe ancienne" {
		t.Errorf("not newest first: %q", all[0].Title)
	}
}

func TestAnnonceUpdateAndValidateRequireOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, other := f.user(t, "owner"), f.user(t, "other")
	a := model.Annonce{UserID: owner.ID, Title: "Piano", Description: "Piano droit à accorder", Price: 300}
	if err := f.annonces.Create(ctx, &a); err != nil {
		t.Fatal(err)
	}

	price := 250.0
	if _, err := f.annonces.Update(ctx, a.ID, other.ID, model.AnnoncePatch{Price: &price}); !errors.Is(err, ErrAnnonceNotFound) {
		t.Errorf("update by other err = %v", err)
	}
	got, err := f.annonces.Update(ctx, a.ID, owner.ID, model.AnnoncePatch{Price: &price})
	if err != nil || got.Price != 250 {
		t.Errorf("update = %+v, %v", got, err)
	}

	if ok, err := f.annonces.MarkValidated(ctx, a.ID, other.ID); ok || err != nil {
		t.Errorf("validated by other: %v %v", ok, err)
	}
	if ok, _ := f.annonces.MarkValidated(ctx, a.ID, owner.ID); !ok {
		t.Error("first validation did not transition")
	}
	if ok, _ := f.annonces.MarkValidated(ctx, a.ID, owner.ID); ok {
		t.Error("second validation transitioned again")
	}

	if err := f.annonces.Delete(ctx, a.ID, other.ID); !errors.Is(err, ErrAnnonceNotFound) {
		t.Errorf("delete by other err = %v", err)
	}
	if err := f.annonces.Delete(ctx, a.ID, 0); err != nil {
		t.Errorf("admin delete err = %v", err)
	}
}

func TestConversations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	me, bob, carol := f.user(t, "me"), f.user(t, "bob"), f.user(t, "carol")
	send := func(from, to uint64, content string) {
		if err := f.messages.Create(ctx, &model.Message{SenderID: from, RecipientID: to, Content: content}); err != nil {
			t.Fatal(err)
		}
	}
	send(me.ID, bob.ID, "salut bob")
	send(carol.ID, me.ID, "coucou toi")
	send(bob.ID, me.ID, "salut à toi")
	send(me.ID, me.ID, "note à moi")

	convs, err := f.messages.Conversations(ctx, me.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 3 {
		t.Fatalf("conversations = %+v", convs)
	}
	want := []struct {
		id   uint64
		last string
	}{{me.ID, "note à moi"}, {bob.ID, "salut à toi"}, {carol.ID, "coucou toi"}}
	for i, w := range want {
		if convs[i].CounterpartID != w.id || convs[i].LastMessage != w.last {
			t.Errorf("conv[%d] = %+v, want %d %q", i, convs[i], w.id, w.last)
		}
	}

	thread, _ := f.messages.Thread(ctx, bob.ID, me.ID)
	if len(thread) != 2 || thread[0].Content != "salut bob" {
		t.Errorf("thread = %+v", thread)
	}
	if empty, _ := f.messages.Thread(ctx, bob.ID, carol.ID); empty == nil || len(empty) != 0 {
		t.Errorf("empty thread = %#v", empty)
	}
	if ok, err := f.messages.Exchanged(ctx, bob.ID, me.ID); !ok || err != nil {
		t.Errorf("Exchanged(bob, me) = %v, %v", ok, err)
	}
	if ok, err := f.messages.Exchanged(ctx, bob.ID, carol.ID); ok || err != nil {
		t.Errorf("Exchanged(bob, carol) = %v, %v", ok, err)
	}
}

func TestNoteUpsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c := f.user(t, "a-user"), f.user(t, "b-user"), f.user(t, "c-user")

	first, err := f.notes.Upsert(ctx, model.Note{AuthorID: a.ID, RatedID: c.ID, Stars: 2, Comment: "bof"})
	if err != nil {
		t.Fatal(err)
	}
	again, err := f.notes.Upsert(ctx, model.Note{AuthorID: a.ID, RatedID: c.ID, Stars: 5})
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != first.ID || again.Stars != 5 || again.Comment != "" {
		t.Errorf("upsert = %+v (first %+v)", again, first)
	}
	f.notes.Upsert(ctx, model.Note{AuthorID: b.ID, RatedID: c.ID, Stars: 4, Comment: "Très gentil"})

	s, _ := f.notes.Summary(ctx, c.ID)
	if s.Count != 2 || s.Average != 4.5 {
		t.Errorf("summary = %+v", s)
	}
	comments, _ := f.notes.Comments(ctx, c.ID)
	if len(comments) != 2 || comments[0].AuthorName != "b-user" {
		t.Errorf("comments = %+v", comments)
	}
	if n, err := f.notes.Get(ctx, c.ID, a.ID); n != nil || err != nil {
		t.Errorf("Get of absent note = %+v, %v", n, err)
	}
}

func TestStoriesCarryAuthorName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "conteuse")
	s := model.Story{UserID: u.ID, Title: "Mon village", Content: "Il était une fois un village."}
	if err := f.stories.Create(ctx, &s); err != nil {
		t.Fatal(err)
	}
	if s.AuthorName != "conteuse" {
		t.Errorf("author = %q", s.AuthorName)
	}
	for i := 0; i < 3; i++ {
		f.stories.Create(ctx, &model.Story{UserID: u.ID, Title: "Encore", Content: "Une autre histoire."})
	}
	list, _ := f.stories.List(ctx, 2)
	if len(list) != 2 || list[0].ID <= list[1].ID {
		t.Errorf("list = %+v", list)
	}
}
