package database

type ArticleRepository interface {
	CreateArticle(title string) (*Article, error)
	GetArticle(id string) (*Article, error)
	SetEditRevision(id string, revision int64) error
}

type ActionLogRepository interface {
	AppendActions(actions []Action) error
}
