package proxy

const MaxInspectBytes = maxInspectBytes
