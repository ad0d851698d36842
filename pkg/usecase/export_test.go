package usecase

// TrendFromScores is exported for testing
var TrendFromScores = trendFromScores

// Slope is exported for testing
var Slope = slope

// BusinessFunctions is exported for testing
var BusinessFunctions = businessFunctions
