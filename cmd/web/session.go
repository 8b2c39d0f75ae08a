package main

type sessionKey string

// currentGameKey remembers the game the browser started last.
const currentGameKey = sessionKey("currentGame")
