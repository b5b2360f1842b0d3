package process

var StagedPath = stagedPath
