package workflow_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/internal/events"
	"github.com/kosta-developer/DEVELOPER-Back/internal/host"
	"github.com/kosta-developer/DEVELOPER-Back/internal/lesson"
	"github.com/kosta-developer/DEVELOPER-Back/internal/store"
	"github.com/kosta-developer/DEVELOPER-Back/internal/studyroom"
	"github.com/kosta-developer/DEVELOPER-Back/internal/tutor"
	"github.com/kosta-developer/DEVELOPER-Back/internal/user"
	"github.com/kosta-developer/DEVELOPER-Back/internal/workflow"
)

// memStore is a single mutex-guarded in-memory backend that satisfies every
// workflow store interface. Conditional updates mirror the SQL repositories.
type memStore struct {
	mu sync.Mutex

	users       map[string]*user.User
	tutors      map[string]*tutor.Tutor
	hosts       map[string]*host.HostUser
	lessons     map[int64]*lesson.Lesson
	apps        map[appKey]*lesson.Application
	lessonFavs  map[int64]*lesson.Favorite
	rooms       map[int64]*studyroom.Studyroom
	roomFavs    map[int64]*studyroom.Favorite
	nextSeq     int64
	deleteError error
}

type appKey struct {
	lessonSeq int64
	tuteeID   string
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*user.User{},
		tutors:     map[string]*tutor.Tutor{},
		hosts:      map[string]*host.HostUser{},
		lessons:    map[int64]*lesson.Lesson{},
		apps:       map[appKey]*lesson.Application{},
		lessonFavs: map[int64]*lesson.Favorite{},
		rooms:      map[int64]*studyroom.Studyroom{},
		roomFavs:   map[int64]*studyroom.Favorite{},
	}
}

func (m *memStore) stores() workflow.Stores {
	return workflow.Stores{
		Users:      memUsers{m},
		Tutors:     memTutors{m},
		Hosts:      memHosts{m},
		Lessons:    memLessons{m},
		Studyrooms: memStudyrooms{m},
	}
}

func (m *memStore) seq() int64 {
	m.nextSeq++
	return m.nextSeq
}

func (m *memStore) addUser(id string, role user.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = &user.User{UserID: id, Name: id, Nickname: id, Email: id + "@example.com", Role: role}
}

func (m *memStore) addPendingTutor(id string) {
	m.addUser(id, user.RoleTutee)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tutors[id] = &tutor.Tutor{UserID: id, Introduction: "hello"}
}

func (m *memStore) addPendingHost(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hosts[id] = &host.HostUser{HostID: id, Name: id, BusinessNo: "123-45-67890"}
}

func (m *memStore) addLesson(tutorID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := m.seq()
	m.lessons[seq] = &lesson.Lesson{LessonSeq: seq, TutorID: tutorID, Name: "lesson", CreatedAt: time.Now()}
	return seq
}

func (m *memStore) addStudyroom(hostID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := m.seq()
	m.rooms[seq] = &studyroom.Studyroom{SrSeq: seq, HostID: hostID, Name: "room", CreatedAt: time.Now()}
	return seq
}

func (m *memStore) application(lessonSeq int64, tuteeID string) (*lesson.Application, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[appKey{lessonSeq, tuteeID}]
	if !ok {
		return nil, false
	}
	cp := *app
	return &cp, true
}

func (m *memStore) role(id string) user.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].Role
}

type memUsers struct{ m *memStore }

func (u memUsers) List(ctx context.Context) ([]user.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	out := make([]user.User, 0, len(u.m.users))
	for _, usr := range u.m.users {
		out = append(out, *usr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (u memUsers) SearchByIDPrefix(ctx context.Context, prefix string) ([]user.User, error) {
	all, _ := u.List(ctx)
	var out []user.User
	for _, usr := range all {
		if strings.HasPrefix(usr.UserID, prefix) {
			out = append(out, usr)
		}
	}
	return out, nil
}

func (u memUsers) GetByID(ctx context.Context, userID string) (*user.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	usr, ok := u.m.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *usr
	return &cp, nil
}

func (u memUsers) DeleteCascade(ctx context.Context, userID string) error {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	if u.m.deleteError != nil {
		return u.m.deleteError
	}
	if _, ok := u.m.users[userID]; !ok {
		return store.ErrNotFound
	}
	for k := range u.m.apps {
		if k.tuteeID == userID {
			delete(u.m.apps, k)
		}
	}
	for seq, fav := range u.m.lessonFavs {
		if fav.UserID == userID {
			delete(u.m.lessonFavs, seq)
		}
	}
	for seq, fav := range u.m.roomFavs {
		if fav.UserID == userID {
			delete(u.m.roomFavs, seq)
		}
	}
	delete(u.m.tutors, userID)
	delete(u.m.users, userID)
	return nil
}

type memTutors struct{ m *memStore }

func (t memTutors) ListPending(ctx context.Context) ([]tutor.Application, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	var out []tutor.Application
	for id, tu := range t.m.tutors {
		if !tu.Approved {
			out = append(out, tutor.Application{UserID: id, Introduction: tu.Introduction})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (t memTutors) Approve(ctx context.Context, userID string) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	tu, ok := t.m.tutors[userID]
	if !ok || tu.Approved {
		return store.ErrNotFound
	}
	usr, ok := t.m.users[userID]
	if !ok || usr.Role == user.RoleWithdrawn {
		return store.ErrNotFound
	}
	now := time.Now()
	tu.Approved = true
	tu.ApprovedAt = &now
	if usr.Role == user.RoleTutee {
		usr.Role = user.RoleTutor
	}
	return nil
}

func (t memTutors) DeletePending(ctx context.Context, userID string) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	tu, ok := t.m.tutors[userID]
	if !ok || tu.Approved {
		return store.ErrNotFound
	}
	delete(t.m.tutors, userID)
	return nil
}

type memHosts struct{ m *memStore }

func (h memHosts) ListPending(ctx context.Context) ([]host.HostUser, error) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	var out []host.HostUser
	for _, hu := range h.m.hosts {
		if !hu.Ready {
			out = append(out, *hu)
		}
	}
	return out, nil
}

func (h memHosts) Approve(ctx context.Context, hostID string) error {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	hu, ok := h.m.hosts[hostID]
	if !ok || hu.Ready {
		return store.ErrNotFound
	}
	hu.Ready = true
	return nil
}

func (h memHosts) DeletePending(ctx context.Context, hostID string) error {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	hu, ok := h.m.hosts[hostID]
	if !ok || hu.Ready {
		return store.ErrNotFound
	}
	delete(h.m.hosts, hostID)
	return nil
}

type memLessons struct{ m *memStore }

func (l memLessons) GetBySeq(ctx context.Context, lessonSeq int64) (*lesson.Lesson, error) {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	ls, ok := l.m.lessons[lessonSeq]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *ls
	return &cp, nil
}

func (l memLessons) ListAll(ctx context.Context) ([]lesson.Lesson, error) {
	return l.Latest(ctx, 0)
}

func (l memLessons) Latest(ctx context.Context, limit int) ([]lesson.Lesson, error) {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	out := make([]lesson.Lesson, 0, len(l.m.lessons))
	for _, ls := range l.m.lessons {
		out = append(out, *ls)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LessonSeq > out[j].LessonSeq })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l memLessons) CreateApplication(ctx context.Context, app *lesson.Application) (*lesson.Application, error) {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	key := appKey{app.LessonSeq, app.TuteeID}
	if _, ok := l.m.apps[key]; ok {
		return nil, store.ErrConflict
	}
	cp := *app
	cp.ApplySeq = l.m.seq()
	cp.ApplyOK = lesson.ApplyPending
	l.m.apps[key] = &cp
	out := cp
	return &out, nil
}

func (l memLessons) ListApplicants(ctx context.Context, lessonSeq int64) ([]lesson.Applicant, error) {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	var out []lesson.Applicant
	for k, app := range l.m.apps {
		if k.lessonSeq == lessonSeq {
			out = append(out, lesson.Applicant{ApplySeq: app.ApplySeq, TuteeID: app.TuteeID, ApplyOK: app.ApplyOK})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApplySeq < out[j].ApplySeq })
	return out, nil
}

func (l memLessons) ApproveApplication(ctx context.Context, lessonSeq int64, tuteeID string) error {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	app, ok := l.m.apps[appKey{lessonSeq, tuteeID}]
	if !ok || app.ApplyOK != lesson.ApplyPending {
		return store.ErrNotFound
	}
	app.ApplyOK = lesson.ApplyApproved
	return nil
}

func (l memLessons) DeleteApplication(ctx context.Context, lessonSeq int64, tuteeID string) error {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	key := appKey{lessonSeq, tuteeID}
	if _, ok := l.m.apps[key]; !ok {
		return store.ErrNotFound
	}
	delete(l.m.apps, key)
	return nil
}

func (l memLessons) CreateFavorite(ctx context.Context, fav *lesson.Favorite) (*lesson.Favorite, error) {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	for _, existing := range l.m.lessonFavs {
		if existing.UserID == fav.UserID && existing.LessonSeq == fav.LessonSeq {
			return nil, store.ErrConflict
		}
	}
	cp := *fav
	cp.FavLesSeq = l.m.seq()
	l.m.lessonFavs[cp.FavLesSeq] = &cp
	out := cp
	return &out, nil
}

func (l memLessons) GetFavorite(ctx context.Context, favLesSeq int64) (*lesson.Favorite, error) {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	fav, ok := l.m.lessonFavs[favLesSeq]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *fav
	return &cp, nil
}

func (l memLessons) DeleteFavorite(ctx context.Context, favLesSeq int64) error {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	if _, ok := l.m.lessonFavs[favLesSeq]; !ok {
		return store.ErrNotFound
	}
	delete(l.m.lessonFavs, favLesSeq)
	return nil
}

type memStudyrooms struct{ m *memStore }

func (s memStudyrooms) GetBySeq(ctx context.Context, srSeq int64) (*studyroom.Studyroom, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	room, ok := s.m.rooms[srSeq]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *room
	return &cp, nil
}

func (s memStudyrooms) Latest(ctx context.Context, limit int) ([]studyroom.Studyroom, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]studyroom.Studyroom, 0, len(s.m.rooms))
	for _, room := range s.m.rooms {
		out = append(out, *room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SrSeq > out[j].SrSeq })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s memStudyrooms) CreateFavorite(ctx context.Context, fav *studyroom.Favorite) (*studyroom.Favorite, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, existing := range s.m.roomFavs {
		if existing.UserID == fav.UserID && existing.SrSeq == fav.SrSeq {
			return nil, store.ErrConflict
		}
	}
	cp := *fav
	cp.FavSrSeq = s.m.seq()
	s.m.roomFavs[cp.FavSrSeq] = &cp
	out := cp
	return &out, nil
}

func (s memStudyrooms) GetFavorite(ctx context.Context, favSrSeq int64) (*studyroom.Favorite, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	fav, ok := s.m.roomFavs[favSrSeq]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *fav
	return &cp, nil
}

func (s memStudyrooms) DeleteFavorite(ctx context.Context, favSrSeq int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.roomFavs[favSrSeq]; !ok {
		return store.ErrNotFound
	}
	delete(s.m.roomFavs, favSrSeq)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var errBroker = errors.New("broker unavailable")
