package character

import "strings"

// Character — описание персонажа, поставляемое платформой один раз на
// сессию. Для движка оно только читается.
type Character struct {
	Slug              string `json:"slug,omitempty"`              // персона у провайдера; пусто — обычный ассистент
	DisplayName       string `json:"displayName,omitempty"`       // имя для интерфейса
	ReferenceImageURL string `json:"referenceImageUrl,omitempty"` // исходник для режима правки изображения
}

// HasPersona сообщает, задана ли у персонажа персона провайдера.
func (c Character) HasPersona() bool {
	return strings.TrimSpace(c.Slug) != ""
}

// Editable сообщает, доступен ли режим правки: нужен референсный исходник.
func (c Character) Editable() bool {
	return strings.TrimSpace(c.ReferenceImageURL) != ""
}
