package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/maynagashev/brewtrack/internal/models"
	"github.com/maynagashev/brewtrack/internal/repository"
	"github.com/maynagashev/brewtrack/internal/resolver"
)

// State - состояние запроса отслеживания.
type State int

// Состояния запроса. Rejected и Failed - конечные состояния ошибок.
const (
	StateReceived State = iota
	StateParsed
	StateRecorded
	StateResolved
	StateRedirected
	StateRejected
	StateFailed
)

var stateNames = [...]string{
	StateReceived:   "received",
	StateParsed:     "parsed",
	StateRecorded:   "recorded",
	StateResolved:   "resolved",
	StateRedirected: "redirected",
	StateRejected:   "rejected",
	StateFailed:     "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal сообщает, что из состояния нет переходов.
func (s State) Terminal() bool {
	return s == StateRedirected || s == StateRejected || s == StateFailed
}

// TrackOutcome - результат прохождения запроса по машине состояний.
// Identity заполнен начиная с Parsed, Counter - с Recorded, Location - с Resolved.
type TrackOutcome struct {
	State    State
	Identity models.BottleIdentity
	Counter  *models.DownloadCounter
	Location string
	Err      error
}

// Redirected выполняет последний переход после отправки ответа 302.
func (o *TrackOutcome) Redirected() {
	if o.State == StateResolved {
		o.State = StateRedirected
	}
}

// BottleParser разбирает имя файла бутылки.
type BottleParser interface {
	Parse(project, filename string) (models.BottleIdentity, error)
}

// Resolver вычисляет адрес артефакта для проекта.
type Resolver interface {
	Known(project string) bool
	Resolve(identity models.BottleIdentity) (string, error)
}

// TrackingService определяет интерфейс сервиса учета скачиваний.
type TrackingService interface {
	Track(ctx context.Context, project, filename string) TrackOutcome
}

var _ TrackingService = (*trackingService)(nil)

type trackingService struct {
	parser   BottleParser
	repo     repository.DownloadRepository
	resolver Resolver
}

// NewTrackingService создает сервис учета скачиваний.
func NewTrackingService(
	parser BottleParser,
	repo repository.DownloadRepository,
	res Resolver,
) TrackingService {
	return &trackingService{parser: parser, repo: repo, resolver: res}
}

// Track проводит запрос через состояния Received -> Parsed -> Recorded -> Resolved.
// Повторов нет: первая ошибка переводит запрос в Rejected или Failed.
// Неизвестный проект переводит запрос в Failed сразу из Parsed, до записи счетчика.
func (s *trackingService) Track(ctx context.Context, project, filename string) TrackOutcome {
	outcome := TrackOutcome{State: StateReceived}

	identity, err := s.parser.Parse(project, filename)
	if err != nil {
		log.WithFields(log.Fields{"project": project, "filename": filename}).
			Infof("[TrackingService:Track] Имя файла отклонено: %v", err)
		outcome.State = StateRejected
		outcome.Err = err
		return outcome
	}
	outcome.State = StateParsed
	outcome.Identity = identity

	// Неизвестный проект не должен создавать строк в хранилище.
	if !s.resolver.Known(identity.Project) {
		log.WithField("project", identity.Project).
			Error("[TrackingService:Track] Проект не зарегистрирован")
		outcome.State = StateFailed
		outcome.Err = fmt.Errorf("проект %q: %w", identity.Project, resolver.ErrUnknownProject)
		return outcome
	}

	counter, err := s.repo.Increment(ctx, identity.Key())
	if err != nil {
		log.WithFields(log.Fields{
			"project":  identity.Project,
			"version":  identity.Version,
			"platform": identity.Platform,
		}).Errorf("[TrackingService:Track] Не удалось записать скачивание: %v", err)
		outcome.State = StateFailed
		outcome.Err = err
		return outcome
	}
	outcome.State = StateRecorded
	outcome.Counter = counter

	location, err := s.resolver.Resolve(identity)
	if err != nil {
		log.WithField("project", identity.Project).
			Errorf("[TrackingService:Track] Не удалось вычислить адрес артефакта: %v", err)
		outcome.State = StateFailed
		outcome.Err = err
		return outcome
	}
	outcome.State = StateResolved
	outcome.Location = location

	log.WithFields(log.Fields{
		"project":   identity.Project,
		"version":   identity.Version,
		"platform":  identity.Platform,
		"downloads": counter.DownloadCount,
	}).Debug("[TrackingService:Track] Скачивание записано")
	return outcome
}
