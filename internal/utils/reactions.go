package utils

// ReactionEmojis are the reactions clients offer by default. Stored counters
// accept other keys as well.
var ReactionEmojis = []string{"❤️", "😂", "😢", "👍", "😮", "😡"}
