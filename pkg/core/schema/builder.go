package schema

// Decl - статически объявленная колонка
type Decl struct {
	Name   string
	Domain Domain
}

// Declare строит колонки из статического объявления.
// Первая колонка по соглашению - первичный ключ.
func Declare(decls ...Decl) []Column {
	b := NewBuilder()
	for _, d := range decls {
		b.Add(d.Name, d.Domain)
	}
	return b.Build()
}

// Builder помогает строить список колонок
type Builder struct {
	columns []Column
}

// NewBuilder создает новый builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Add добавляет колонку заданного домена
func (b *Builder) Add(name string, d Domain) *Builder {
	b.columns = append(b.columns, Column{
		Name:      name,
		Attribute: name,
		Domain:    d,
	})
	return b
}

// AddString добавляет STRING колонку
func (b *Builder) AddString(name string) *Builder { return b.Add(name, String) }

// AddInt добавляет INT колонку
func (b *Builder) AddInt(name string) *Builder { return b.Add(name, Int) }

// AddBool добавляет BOOL колонку
func (b *Builder) AddBool(name string) *Builder { return b.Add(name, Bool) }

// AddDouble добавляет DOUBLE колонку
func (b *Builder) AddDouble(name string) *Builder { return b.Add(name, Double) }

// AddDate добавляет DATE колонку
func (b *Builder) AddDate(name string) *Builder { return b.Add(name, Date) }

// AddNative добавляет колонку из каталога БД, домен определяется по
// нативному типу
func (b *Builder) AddNative(name, nativeType string) *Builder {
	b.columns = append(b.columns, Column{
		Name:       name,
		Attribute:  name,
		Domain:     DomainFromNativeType(nativeType),
		NativeType: nativeType,
	})
	return b
}

// Build возвращает колонки в порядке добавления, первая помечена как
// первичный ключ
func (b *Builder) Build() []Column {
	cols := make([]Column, len(b.columns))
	copy(cols, b.columns)
	if len(cols) > 0 {
		cols[0].PrimaryKey = true
	}
	return cols
}

// Len возвращает количество колонок
func (b *Builder) Len() int {
	return len(b.columns)
}
