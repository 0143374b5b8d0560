package mode

import "sync"

// Mode — взаимоисключающий выбор модальности ответа на следующий ход.
type Mode string

const (
	Text  Mode = "text"
	Image Mode = "image"
	Voice Mode = "voice"
)

// Controller — маленький конечный автомат выбора модальности плюс
// ортогональный флаг правки. Выбор действует один ход: после завершения
// любого сабмита состояние сбрасывается в {Text, false}. Пока ход
// выполняется, переключения молча игнорируются.
type Controller struct {
	mu   sync.Mutex
	act  Mode
	edit bool
	busy func() bool
}

func New() *Controller {
	return &Controller{act: Text}
}

// Guard привязывает признак выполняемого хода. Переключения и запрос правки
// при busy() == true игнорируются; Reset проходит всегда.
func (c *Controller) Guard(busy func() bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = busy
}

// Active возвращает текущую модальность.
func (c *Controller) Active() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.act
}

// EditRequested возвращает флаг правки изображения.
func (c *Controller) EditRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edit
}

// State возвращает оба значения одним срезом времени.
func (c *Controller) State() (Mode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.act, c.edit
}

// ToggleImage включает режим изображения; повторное нажатие возвращает Text.
// Переключение всегда сбрасывает флаг правки.
func (c *Controller) ToggleImage() {
	c.toggle(Image)
}

// ToggleVoice включает голосовой режим; повторное нажатие возвращает Text.
func (c *Controller) ToggleVoice() {
	c.toggle(Voice)
}

func (c *Controller) toggle(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy != nil && c.busy() {
		return
	}
	if c.act == m {
		c.act = Text
	} else {
		c.act = m
	}
	c.edit = false
}

// RequestEdit ставит флаг правки. Принимается только в режиме Image.
func (c *Controller) RequestEdit(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy != nil && c.busy() {
		return
	}
	if !on {
		c.edit = false
		return
	}
	if c.act == Image {
		c.edit = true
	}
}

// Reset возвращает автомат в начальное состояние {Text, false}.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.act = Text
	c.edit = false
}
