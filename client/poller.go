package client

import (
	"context"
	"log"
	"sync"
	"time"

	"adminchat/models"
)

// State - состояние поллера для одной открытой переписки
type State int

const (
	// StateUninitialized - ничего не отрисовано
	StateUninitialized State = iota
	// StateLoading - идет первая полная выборка
	StateLoading
	// StateLive - инкрементальные выборки по таймеру
	StateLive
)

// Fetcher - транспорт одной чат-поверхности. Обе поверхности (админская и
// пользовательская) ходят через один и тот же контракт: sinceID=0 - полная
// выборка, sinceID>0 - только сообщения новее.
type Fetcher interface {
	Fetch(ctx context.Context, sinceID int64) ([]models.Message, error)
	Send(ctx context.Context, body string) error
}

// Renderer получает сообщения и разделители дат в порядке отображения
type Renderer interface {
	RenderDateSeparator(date string)
	RenderMessage(msg models.Message)
}

// Poller реализует протокол опроса переписки: Uninitialized -> Loading ->
// Live, дедупликация по id, разделители дат по границе календарного дня.
// Запросы в полете не отменяются; наложившиеся выборки разрешаются
// дедупликацией при отрисовке. Безопасен для конкурентных вызовов: цикл
// Run и отправки из другой горутины делят одно состояние под мьютексом,
// сами выборки идут без него и могут накладываться.
type Poller struct {
	fetcher  Fetcher
	renderer Renderer
	interval time.Duration

	mu       sync.Mutex
	state    State
	lastID   int64
	lastDate string
	seen     map[int64]struct{}
}

func NewPoller(fetcher Fetcher, renderer Renderer, interval time.Duration) *Poller {
	return &Poller{
		fetcher:  fetcher,
		renderer: renderer,
		interval: interval,
		state:    StateUninitialized,
		seen:     make(map[int64]struct{}),
	}
}

func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastID возвращает курсор - наибольший отрисованный id
func (p *Poller) LastID() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastID
}

// Seed засеивает курсор уже отрисованными сообщениями, позволяя пропустить
// избыточную полную выборку, и сразу переводит поллер в Live
func (p *Poller) Seed(messages []models.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.apply(messages)
	p.state = StateLive
}

// Poll выполняет один цикл выборки, соответствующий текущему состоянию:
// полная выборка из Loading, инкрементальная из Live. Ошибка выборки не
// двигает состояние - следующий тик повторит ее.
func (p *Poller) Poll(ctx context.Context) error {
	p.mu.Lock()
	if p.state == StateUninitialized {
		p.state = StateLoading
	}
	sinceID := int64(0)
	if p.state == StateLive {
		sinceID = p.lastID
	}
	p.mu.Unlock()

	messages, err := p.fetcher.Fetch(ctx, sinceID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.apply(messages)
	p.state = StateLive
	p.mu.Unlock()
	return nil
}

// Send отправляет сообщение и сразу делает выборку для сверки локального
// состояния с сервером вместо оптимистичной отрисовки
func (p *Poller) Send(ctx context.Context, body string) error {
	if err := p.fetcher.Send(ctx, body); err != nil {
		return err
	}
	return p.Poll(ctx)
}

// Run крутит цикл опроса с фиксированным интервалом до отмены контекста
func (p *Poller) Run(ctx context.Context) {
	if err := p.Poll(ctx); err != nil {
		log.Printf("Initial fetch failed: %v", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Poll(ctx); err != nil {
				log.Printf("Poll failed: %v", err)
			}
		}
	}
}

// apply дописывает только новые сообщения, по возрастанию, вставляя
// разделитель при смене календарной даты. Дедупликация по id защищает от
// потери клиентского состояния, даже когда серверный фильтр уже отсек
// виденные id. Вызывается только под p.mu.
func (p *Poller) apply(messages []models.Message) {
	for _, msg := range messages {
		if _, ok := p.seen[msg.ID]; ok {
			continue
		}
		date := msg.CreatedAt.Local().Format("Jan 2, 2006")
		if date != p.lastDate {
			p.renderer.RenderDateSeparator(date)
			p.lastDate = date
		}
		p.renderer.RenderMessage(msg)
		p.seen[msg.ID] = struct{}{}
		if msg.ID > p.lastID {
			p.lastID = msg.ID
		}
	}
}
