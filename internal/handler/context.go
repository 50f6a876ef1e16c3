package handler

type ContextKey string

var (
	SubCtxKey    ContextKey = "sub"
	ClaimsCtxKey ContextKey = "claims"
	MyInfoCtx    ContextKey = "myInfo"
)
