package cart

import "sync"

// Subscribe регистрирует подписчика на изменения корзины.
//
// Канал хранит не более одного непрочитанного изменения: более свежее
// изменение вытесняет старое, поэтому медленный подписчик не блокирует корзину
// и всегда видит актуальный снимок. Функция отписки закрывает канал и может
// вызываться повторно.
func (c *Cart) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 1)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
	return ch, unsubscribe
}

// notifyLocked рассылает изменение всем подписчикам. Вызывается под c.mu.
func (c *Cart) notifyLocked(change Change) {
	if len(c.subs) == 0 {
		return
	}
	change.Total = c.totalLocked()

	for _, ch := range c.subs {
		// Каждому подписчику нужна своя копия снимка.
		ev := change
		ev.Lines = c.snapshotLocked()
		select {
		case ch <- ev:
			continue
		default:
		}
		// Буфер занят устаревшим изменением: вытесняем его.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}

// Follow синхронизирует родительскую корзину dst с дочерней src: каждый снимок
// src применяется к dst через Replace. stop отписывается и дожидается
// завершения горутины. Корзина не может следить сама за собой.
func Follow(src, dst *Cart) (stop func()) {
	if src == dst {
		return func() {}
	}
	changes, unsubscribe := src.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for change := range changes {
			dst.Replace(change.Lines)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			<-done
		})
	}
}
