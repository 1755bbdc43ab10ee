// Package bus реализует внутрипроцессную шину событий токена.
// Шина моделирует контракт storage-событий браузера между вкладками:
// удаление токена означает выход в другой вкладке, изменение — вход или
// обновление. Явная шина делает этот контракт тестируемым без браузера.
package bus

import (
	"io"
	"log/slog"
	"sync"
)

// Виды событий токена.
const (
	TokenRemoved = "removed"
	TokenChanged = "changed"
)

const subscriberBuffer = 8

// TokenEvent событие изменения access-токена.
// Origin позволяет подписчику отбросить собственные публикации: storage-событие
// браузера не приходит во вкладку, которая сама изменила ключ, и шина
// воспроизводит этот контракт на стороне подписчика.
type TokenEvent struct {
	Kind   string // TokenRemoved или TokenChanged
	Access string // Новое значение токена при TokenChanged
	Origin string // Идентификатор экземпляра, опубликовавшего событие
}

// Bus широковещательная шина с буферизованными каналами подписчиков.
// Публикация не блокируется: медленный подписчик теряет событие, это
// допустимо — следующий fetchUser всё равно синхронизирует состояние.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan TokenEvent
	nextID int
	closed bool
	log    *slog.Logger
}

// New создаёт шину. Логгер nil отключает логирование.
func New(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bus{
		subs: make(map[int]chan TokenEvent),
		log:  log,
	}
}

// Subscribe возвращает канал событий и функцию отписки.
// Канал закрывается при отписке или закрытии шины.
func (b *Bus) Subscribe() (<-chan TokenEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan TokenEvent, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish рассылает событие всем подписчикам без блокировки.
func (b *Bus) Publish(ev TokenEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.log.Warn("subscriber buffer full, dropping token event",
				slog.Int("subscriber", id), slog.String("kind", ev.Kind))
		}
	}
}

// Close закрывает шину и каналы всех подписчиков.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
