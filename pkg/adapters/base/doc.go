// Package base предоставляет общие хелперы и утилиты для всех адаптеров БД
//
// Этот пакет устраняет дублирование кода между адаптерами (SQLite, PostgreSQL,
// MS SQL Server, MySQL) путем вынесения общей логики в переиспользуемые компоненты.
//
// # Основные компоненты
//
// SQLAdapter - общий каркас адаптера поверх database/sql:
//   - OpenDB()/Attach() - подключение и проверка ping
//   - Open() - сессия на одну операцию репозитория
//   - Close(), Ping(), GetDatabaseType(), Dialect()
//
// Session - обертка над *sql.Tx:
//   - Commit() фиксирует изменения
//   - Close() без Commit откатывает транзакцию
//
// UniversalTypeConverter - конвертация значений БД в текст:
//   - DBValueToString() - значение БД → строка (с учетом специфики СУБД)
//   - ReadStrings() - чтение результата запроса в [][]string
//   - Поддержка PostgreSQL-специфичных типов (UUID, JSONB, NUMERIC)
//
// # Использование
//
// Адаптер встраивает *SQLAdapter и добавляет запросы к каталогу:
//
//	type Adapter struct {
//	    *base.SQLAdapter
//	}
//
//	func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
//	    a.SQLAdapter = base.NewSQLAdapter("sqlite", query.SQLite())
//	    return a.OpenDB(ctx, "sqlite", cfg)
//	}
package base
